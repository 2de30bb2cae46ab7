package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the auth middleware stores the session user
const ContextUserKey = "auction.user"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// Specific errors are matched before their categories.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrUserNoBids):
		return http.StatusOK, "no auctions found for user"

	case errors.Is(err, auctionerrors.ErrNotLoggedIn):
		return http.StatusUnauthorized, "login required"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, auctionerrors.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid session token"
	case errors.Is(err, auctionerrors.ErrAuthorization):
		return http.StatusForbidden, "not permitted"

	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, auctionerrors.ErrEmptyPrompt):
		return http.StatusBadRequest, "prompt is required"
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request"

	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusConflict, "auction has already ended"
	case errors.Is(err, auctionerrors.ErrDraftSuperseded):
		return http.StatusConflict, "draft superseded by a newer request"
	case errors.Is(err, auctionerrors.ErrStateConflict):
		return http.StatusConflict, "conflict"

	case errors.Is(err, auctionerrors.ErrDrafterDisabled):
		return http.StatusBadGateway, "drafting is not configured"
	case errors.Is(err, auctionerrors.ErrExternalFailure):
		return http.StatusBadGateway, "upstream service failed"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err and writes the error envelope
func RespondError(c *gin.Context, err error) (int, string) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	return status, message
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// SetCurrentUser attaches the session user to the request
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserKey, user)
}

// CurrentUser returns the session user, or nil for an anonymous request
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// UserField is the user ID for log fields, empty when anonymous
func UserField(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.UserID
}
