package handler

import (
	"errors"
	"net/http"

	"auction-house/internal/auth"
	"auction-house/internal/dashboard"
	"auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=account_handler.go -destination=mock_account_handler.go -package=handler

var errNotificationGone = errors.New("notification expired or already dismissed")

type SessionServiceInterface interface {
	Login(username, secret string) (auth.Session, error)
	Logout(user *models.User)
}

type DashboardServiceInterface interface {
	For(user *models.User) (dashboard.View, error)
}

type NotificationServiceInterface interface {
	List() []models.Notification
	Dismiss(id string) bool
}

// AccountHandler serves the per-user endpoints: session, dashboard and notifications
type AccountHandler struct {
	sessions      SessionServiceInterface
	dashboards    DashboardServiceInterface
	notifications NotificationServiceInterface
}

func NewAccountHandler(sessions SessionServiceInterface, dashboards DashboardServiceInterface, notifications NotificationServiceInterface) *AccountHandler {
	return &AccountHandler{sessions: sessions, dashboards: dashboards, notifications: notifications}
}

// LoginHandler handles POST /login
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.sessions.Login(req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("LoginHandler: login failed", map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, session, "login successful")
}

// LogoutHandler handles POST /logout. Tokens are stateless, so this only says goodbye.
func (h *AccountHandler) LogoutHandler(c *gin.Context) {
	h.sessions.Logout(helpers.CurrentUser(c))
	utils.JSONResponse(c, http.StatusOK, nil, "logged out")
}

// DashboardHandler handles GET /dashboard
func (h *AccountHandler) DashboardHandler(c *gin.Context) {
	user := helpers.CurrentUser(c)
	view, err := h.dashboards.For(user)
	if err != nil {
		helpers.RespondError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, view, "dashboard retrieved successfully")
	helpers.LogSuccess("DashboardHandler", "dashboard retrieved successfully", map[string]any{"user_id": helpers.UserField(user), "role": string(view.Role)})
}

// ListNotificationsHandler handles GET /notifications
func (h *AccountHandler) ListNotificationsHandler(c *gin.Context) {
	list := h.notifications.List()
	if list == nil {
		list = []models.Notification{}
	}
	utils.JSONResponse(c, http.StatusOK, list, "notifications retrieved successfully")
}

// DismissNotificationHandler handles DELETE /notifications/:notification_id
func (h *AccountHandler) DismissNotificationHandler(c *gin.Context) {
	id := c.Param("notification_id")
	if !h.notifications.Dismiss(id) {
		utils.JSONError(c, http.StatusNotFound, errNotificationGone, "notification not found")
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "notification dismissed")
}
