package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestIDKey = "auction.request_id"
)

var errRateLimited = errors.New("bid rate limit exceeded")

// SessionResolver turns a bearer token into the session user
type SessionResolver interface {
	Resolve(token string) (*models.User, error)
}

// RequestIDMiddleware reuses the caller's X-Request-ID or mints a v7 UUID
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(HeaderRequestID)
	if id == "" {
		id = utils.GenerateID()
	}
	c.Set(ctxRequestIDKey, id)
	c.Header(HeaderRequestID, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(ctxRequestIDKey),
	}
	if u := helpers.CurrentUser(c); u != nil {
		fields["user_id"] = u.UserID
	}
	if c.Writer.Status() >= http.StatusInternalServerError {
		utils.Error("HTTP Request", fields)
		return
	}
	utils.Info("HTTP Request", fields)
}

// OptionalAuth attaches the session user when a bearer token is present.
// Requests without a token continue anonymously so the engines can answer
// with their own "must be logged in" notification. A bad token is rejected.
func OptionalAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			utils.JSONAbort(c, http.StatusUnauthorized, errors.New("malformed authorization header"), "invalid session token")
			return
		}

		user, err := resolver.Resolve(strings.TrimSpace(token))
		if err != nil {
			utils.Warn("OptionalAuth: token rejected", map[string]any{"path": c.Request.URL.Path, "error": err.Error()})
			utils.JSONAbort(c, http.StatusUnauthorized, err, "invalid session token")
			return
		}

		helpers.SetCurrentUser(c, user)
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// BidRateLimiter keeps one token bucket per client. Logged-in clients are
// keyed by user ID, anonymous ones by IP.
type BidRateLimiter struct {
	perSec float64
	burst  int

	mu      sync.Mutex
	clients map[string]*limiterEntry
	now     func() time.Time
}

func NewBidRateLimiter(perSec float64, burst int) *BidRateLimiter {
	return &BidRateLimiter{
		perSec:  perSec,
		burst:   burst,
		clients: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func clientKey(c *gin.Context) string {
	if u := helpers.CurrentUser(c); u != nil {
		return "user:" + u.UserID
	}
	return "ip:" + c.ClientIP()
}

func (l *BidRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(l.perSec), l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = l.now()
	return entry.limiter.AllowN(entry.lastSeen, 1)
}

// Middleware must run after OptionalAuth so clients are keyed by user
func (l *BidRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		if !l.allow(key) {
			utils.Warn("BidRateLimiter: request throttled", map[string]any{"client": key, "path": c.Request.URL.Path})
			utils.JSONAbort(c, http.StatusTooManyRequests, errRateLimited, "too many bids, slow down")
			return
		}
		c.Next()
	}
}

// Prune forgets clients idle for longer than maxIdle and returns how many were dropped
func (l *BidRateLimiter) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	dropped := 0
	for key, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			dropped++
		}
	}
	return dropped
}

// RunCleanup prunes idle clients every interval until ctx is done
func (l *BidRateLimiter) RunCleanup(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := l.Prune(maxIdle); n > 0 {
				utils.Debug("BidRateLimiter: pruned idle clients", map[string]any{"count": n})
			}
		}
	}
}
