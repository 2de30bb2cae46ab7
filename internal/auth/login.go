package auth

import (
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/notification"
	"auction-house/utils"
)

// Session is what a successful login hands back to the client
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// LoginService ties the credential check, tokens and greetings together
type LoginService struct {
	registry *Registry
	tokens   *TokenService
	notifier notification.Notifier
}

// NewLoginService creates a LoginService
func NewLoginService(registry *Registry, tokens *TokenService, notifier notification.Notifier) *LoginService {
	return &LoginService{registry: registry, tokens: tokens, notifier: notifier}
}

// Login checks credentials and issues a session token.
// A failed login emits no notification.
func (s *LoginService) Login(username, secret string) (Session, error) {
	user, err := s.registry.Authenticate(username, secret)
	if err != nil {
		utils.Info("auth: login rejected", map[string]any{"username": username})
		return Session{}, fmt.Errorf("service: login: %w", err)
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		utils.Error("auth: token issue failed", map[string]any{"user_id": user.UserID, "error": err.Error()})
		return Session{}, fmt.Errorf("service: login: %w", err)
	}

	s.notifier.Notify(fmt.Sprintf("Welcome back, %s!", user.Username), models.SeveritySuccess)
	utils.Info("auth: login", map[string]any{"user_id": user.UserID, "role": string(user.Role)})
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Logout says goodbye. Logging out without a session does nothing.
func (s *LoginService) Logout(user *models.User) {
	if user == nil {
		return
	}
	s.notifier.Notify(fmt.Sprintf("Goodbye, %s!", user.Username), models.SeverityInfo)
	utils.Info("auth: logout", map[string]any{"user_id": user.UserID})
}

// Resolve maps a bearer token back to a registered user
func (s *LoginService) Resolve(token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, ok := s.registry.Lookup(claims.UserID)
	if !ok {
		return nil, fmt.Errorf("auth: %w: unknown user %s", auctionerrors.ErrInvalidToken, claims.UserID)
	}
	return user, nil
}

// Lookup exposes the registry so the service can act as a user directory
func (s *LoginService) Lookup(userID string) (*models.User, bool) {
	return s.registry.Lookup(userID)
}

// Users lists every registered user
func (s *LoginService) Users() []models.User {
	return s.registry.Users()
}
