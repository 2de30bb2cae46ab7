package handler

import (
	"net/http"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/auth"
	"auction-house/internal/dashboard"
	"auction-house/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type accountMocks struct {
	sessions      *MockSessionServiceInterface
	dashboards    *MockDashboardServiceInterface
	notifications *MockNotificationServiceInterface
}

func newAccountRouter(t *testing.T) (*gin.Engine, accountMocks) {
	ctrl := gomock.NewController(t)
	m := accountMocks{
		sessions:      NewMockSessionServiceInterface(ctrl),
		dashboards:    NewMockDashboardServiceInterface(ctrl),
		notifications: NewMockNotificationServiceInterface(ctrl),
	}
	h := NewAccountHandler(m.sessions, m.dashboards, m.notifications)

	router := newTestRouter()
	router.POST("/login", h.LoginHandler)
	router.POST("/logout", h.LogoutHandler)
	router.GET("/dashboard", h.DashboardHandler)
	router.GET("/notifications", h.ListNotificationsHandler)
	router.DELETE("/notifications/:notification_id", h.DismissNotificationHandler)
	return router, m
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           any
		mockSetup      func(m accountMocks)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "valid_credentials",
			body: map[string]string{"username": "buyer1", "password": "password123"},
			mockSetup: func(m accountMocks) {
				m.sessions.EXPECT().Login("buyer1", "password123").Return(auth.Session{
					Token:     "signed.jwt.token",
					ExpiresAt: expires,
					User:      testUsers["buyer1"],
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "login successful",
		},
		{
			name: "wrong_password",
			body: map[string]string{"username": "buyer1", "password": "nope"},
			mockSetup: func(m accountMocks) {
				m.sessions.EXPECT().Login("buyer1", "nope").Return(auth.Session{}, auctionerrors.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "invalid username or password",
		},
		{
			name:           "missing_password",
			body:           map[string]string{"username": "buyer1"},
			mockSetup:      func(m accountMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, m := newAccountRouter(t)
			tc.mockSetup(m)

			w, resp := doRequest(t, router, http.MethodPost, "/login", "", tc.body)
			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if w.Code == http.StatusOK {
				data := resp["data"].(map[string]any)
				require.Equal(t, "signed.jwt.token", data["token"])
				user := data["user"].(map[string]any)
				require.Equal(t, "buyer1", user["username"])
				require.NotContains(t, user, "PasswordHash")
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user string
		want gomock.Matcher
	}{
		{name: "logged_in", user: "seller1", want: gomock.Eq(testUsers["seller1"])},
		{name: "anonymous", want: gomock.Nil()},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, m := newAccountRouter(t)
			m.sessions.EXPECT().Logout(tc.want).Times(1)

			w, resp := doRequest(t, router, http.MethodPost, "/logout", tc.user, nil)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, "logged out", resp["message"])
		})
	}
}

func TestDashboardHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		user           string
		mockSetup      func(m accountMocks)
		expectedStatus int
		validate       func(t *testing.T, data map[string]any)
	}{
		{
			name: "seller_view",
			user: "seller1",
			mockSetup: func(m accountMocks) {
				m.dashboards.EXPECT().For(testUsers["seller1"]).Return(dashboard.View{
					Role:   models.RoleSeller,
					Seller: &dashboard.SellerView{Active: []models.Auction{}, Ended: []models.Auction{}, TotalSales: 320},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, data map[string]any) {
				require.Equal(t, "SELLER", data["role"])
				require.Equal(t, 320.0, data["seller"].(map[string]any)["total_sales"])
				require.NotContains(t, data, "buyer")
				require.NotContains(t, data, "admin")
			},
		},
		{
			name: "anonymous",
			mockSetup: func(m accountMocks) {
				m.dashboards.EXPECT().For(gomock.Nil()).Return(dashboard.View{}, auctionerrors.ErrNotLoggedIn)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, m := newAccountRouter(t)
			tc.mockSetup(m)

			w, resp := doRequest(t, router, http.MethodGet, "/dashboard", tc.user, nil)
			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.validate != nil {
				tc.validate(t, resp["data"].(map[string]any))
			}
		})
	}
}

func TestNotificationHandlers(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		router, m := newAccountRouter(t)
		m.notifications.EXPECT().List().Return([]models.Notification{
			{ID: "n1", Message: "Welcome back, buyer1!", Type: models.SeveritySuccess, CreatedAt: time.Now()},
		})

		w, resp := doRequest(t, router, http.MethodGet, "/notifications", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].([]any)
		require.Len(t, data, 1)
		require.Equal(t, "success", data[0].(map[string]any)["type"])
	})

	t.Run("list_empty", func(t *testing.T) {
		t.Parallel()

		router, m := newAccountRouter(t)
		m.notifications.EXPECT().List().Return(nil)

		w, resp := doRequest(t, router, http.MethodGet, "/notifications", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, resp["data"].([]any))
	})

	t.Run("dismiss", func(t *testing.T) {
		t.Parallel()

		router, m := newAccountRouter(t)
		m.notifications.EXPECT().Dismiss("n1").Return(true)

		w, resp := doRequest(t, router, http.MethodDelete, "/notifications/n1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "notification dismissed", resp["message"])
	})

	t.Run("dismiss_gone", func(t *testing.T) {
		t.Parallel()

		router, m := newAccountRouter(t)
		m.notifications.EXPECT().Dismiss("n2").Return(false)

		w, resp := doRequest(t, router, http.MethodDelete, "/notifications/n2", "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "notification not found", resp["message"])
	})
}
