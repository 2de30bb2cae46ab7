package auth

import (
	"fmt"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a plain-text secret with bcrypt at cost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func HashSecret(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Registry is the fixed set of known users. It is read-only once built.
type Registry struct {
	users  []models.User
	byID   map[string]int
	byName map[string]int
}

// NewRegistry indexes users. IDs and usernames must be unique and every
// user needs a known role and a password hash.
func NewRegistry(users []models.User) (*Registry, error) {
	r := &Registry{
		users:  make([]models.User, 0, len(users)),
		byID:   make(map[string]int, len(users)),
		byName: make(map[string]int, len(users)),
	}

	for _, u := range users {
		switch {
		case u.UserID == "" || u.Username == "":
			return nil, fmt.Errorf("auth: user %q: %w - missing id or username", u.Username, auctionerrors.ErrValidation)
		case !u.Role.Valid():
			return nil, fmt.Errorf("auth: user %q: %w - unknown role %q", u.Username, auctionerrors.ErrValidation, u.Role)
		case u.PasswordHash == "":
			return nil, fmt.Errorf("auth: user %q: %w - missing password hash", u.Username, auctionerrors.ErrValidation)
		}
		if _, dup := r.byID[u.UserID]; dup {
			return nil, fmt.Errorf("auth: %w - duplicate user id %q", auctionerrors.ErrValidation, u.UserID)
		}
		if _, dup := r.byName[u.Username]; dup {
			return nil, fmt.Errorf("auth: %w - duplicate username %q", auctionerrors.ErrValidation, u.Username)
		}

		r.byID[u.UserID] = len(r.users)
		r.byName[u.Username] = len(r.users)
		r.users = append(r.users, u)
	}
	return r, nil
}

// Authenticate returns the user whose username and secret both match.
func (r *Registry) Authenticate(username, secret string) (*models.User, error) {
	idx, ok := r.byName[username]
	if !ok {
		return nil, auctionerrors.ErrInvalidCredentials
	}
	u := r.users[idx]
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(secret)); err != nil {
		return nil, auctionerrors.ErrInvalidCredentials
	}
	return &u, nil
}

// Lookup returns a copy of the user with userID
func (r *Registry) Lookup(userID string) (*models.User, bool) {
	idx, ok := r.byID[userID]
	if !ok {
		return nil, false
	}
	u := r.users[idx]
	return &u, true
}

// Users returns all users in registration order
func (r *Registry) Users() []models.User {
	return append([]models.User(nil), r.users...)
}
