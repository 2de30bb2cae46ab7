package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/dashboard"
	"auction-house/internal/drafter"
	"auction-house/internal/lifecycle"
	model "auction-house/internal/models"
	"auction-house/internal/notification"
	"auction-house/internal/repository"
	"auction-house/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

// testUsers are registered in every TestApp, keyed by username
var testUsers = []model.User{
	{UserID: "1", Username: "buyer1", Role: model.RoleBuyer},
	{UserID: "2", Username: "buyer2", Role: model.RoleBuyer},
	{UserID: "3", Username: "seller1", Role: model.RoleSeller},
	{UserID: "5", Username: "admin", Role: model.RoleAdmin},
}

// TestApp is the full stack behind the router, sharing one in-memory store
type TestApp struct {
	Router        *gin.Engine
	Repo          *repository.MemoryRepo
	Notifications *notification.Service
	Engine        *lifecycle.Engine
}

// AppOption tweaks a TestApp before the router is built
type AppOption func(*appConfig)

type appConfig struct {
	drafter  drafter.Drafter
	bidRate  float64
	bidBurst int
}

// WithDrafter swaps the disabled default drafter
func WithDrafter(d drafter.Drafter) AppOption {
	return func(c *appConfig) { c.drafter = d }
}

// WithBidLimit enables the bid rate limiter
func WithBidLimit(perSec float64, burst int) AppOption {
	return func(c *appConfig) { c.bidRate, c.bidBurst = perSec, burst }
}

// SetupTestApp initializes the router with an in-memory repository for integration testing.
func SetupTestApp(t *testing.T, auctions []model.Auction, opts ...AppOption) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := appConfig{drafter: drafter.NewHTTPDrafter("", "", 0)}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := repository.NewMemoryRepo()
	for _, a := range auctions {
		require.NoError(t, repo.AddAuction(a))
	}

	users := make([]model.User, 0, len(testUsers))
	for _, u := range testUsers {
		hash, err := auth.HashSecret(testPassword, bcrypt.MinCost)
		require.NoError(t, err)
		u.PasswordHash = hash
		users = append(users, u)
	}
	registry, err := auth.NewRegistry(users)
	require.NoError(t, err)

	notifications := notification.NewService(notification.WithTTL(time.Minute))
	t.Cleanup(notifications.Close)

	tokens, err := auth.NewTokenService("integration-secret", time.Hour)
	require.NoError(t, err)
	sessions := auth.NewLoginService(registry, tokens, notifications)
	engine := lifecycle.NewEngine(repo, notifications, lifecycle.WithUserDirectory(sessions))

	var limiter *server.BidRateLimiter
	if cfg.bidRate > 0 {
		limiter = server.NewBidRateLimiter(cfg.bidRate, cfg.bidBurst)
	}

	router := server.SetupRouter(server.Services{
		Bidding:       bidding.NewBiddingService(repo, notifications),
		Auctions:      auction.NewAuctionService(repo, notifications, cfg.drafter),
		Lifecycle:     engine,
		Sessions:      sessions,
		Dashboards:    dashboard.NewService(repo, sessions),
		Notifications: notifications,
		BidLimiter:    limiter,
	})

	return &TestApp{Router: router, Repo: repo, Notifications: notifications, Engine: engine}
}

// Login authenticates username and returns the bearer token
func (a *TestApp) Login(t *testing.T, username string) string {
	t.Helper()
	resp, w := a.Do(t, "POST", "/login", "", map[string]string{"username": username, "password": testPassword})
	require.Equal(t, 200, w.Code, "login %s", username)
	return resp["data"].(map[string]any)["token"].(string)
}

// Messages returns the queued notification texts, oldest first
func (a *TestApp) Messages() []string {
	list := a.Notifications.List()
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Message)
	}
	return out
}

// Do executes an HTTP request on the app's router and parses the envelope.
// token may be empty for an anonymous request.
func (a *TestApp) Do(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	a.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// ActiveAuction builds an auction by seller1 ending in d
func ActiveAuction(id string, startingPrice int64, d time.Duration) model.Auction {
	now := time.Now().UTC()
	return model.Auction{
		AuctionID:     id,
		Title:         "Title " + id,
		Description:   "Description " + id,
		ImageURL:      auction.DefaultImageURL("Title " + id),
		SellerID:      "3",
		SellerName:    "seller1",
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(d),
		Bids:          []model.Bid{},
		Status:        model.StatusActive,
	}
}
