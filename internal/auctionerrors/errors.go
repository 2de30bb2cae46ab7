package auctionerrors

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of them,
// so callers can branch with errors.Is on either level.
var (
	ErrAuthorization   = errors.New("authorization failed")
	ErrValidation      = errors.New("validation failed")
	ErrStateConflict   = errors.New("state conflict")
	ErrExternalFailure = errors.New("external failure")
)

// Lookup errors. These are benign: a caller's view of the collection may be stale.
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrUserNoBids      = errors.New("user has not placed any bids")
)

// Authorization errors
var (
	ErrNotLoggedIn        = fmt.Errorf("%w: must be logged in", ErrAuthorization)
	ErrNotBuyer           = fmt.Errorf("%w: only buyers can place bids", ErrAuthorization)
	ErrNotSeller          = fmt.Errorf("%w: must be a seller", ErrAuthorization)
	ErrNotAdmin           = fmt.Errorf("%w: admin role required", ErrAuthorization)
	ErrSelfBid            = fmt.Errorf("%w: cannot bid on your own auction", ErrAuthorization)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthorization)
	ErrInvalidToken       = fmt.Errorf("%w: invalid session token", ErrAuthorization)
)

// Validation errors
var (
	ErrInvalidBid       = fmt.Errorf("%w: invalid bid", ErrValidation)
	ErrBidTooLow        = fmt.Errorf("%w: bid amount too low", ErrValidation)
	ErrInvalidAuction   = fmt.Errorf("%w: invalid auction details", ErrValidation)
	ErrEmptyPrompt      = fmt.Errorf("%w: empty draft prompt", ErrValidation)
	ErrInvariantBroken  = fmt.Errorf("%w: auction invariant violated", ErrValidation)
	ErrDuplicateAuction = fmt.Errorf("%w: auction already exists", ErrValidation)
)

// State conflict errors
var (
	ErrAuctionEnded    = fmt.Errorf("%w: auction has already ended", ErrStateConflict)
	ErrDraftSuperseded = fmt.Errorf("%w: draft request superseded by a newer one", ErrStateConflict)
)

// External failures
var (
	ErrDraftFailed     = fmt.Errorf("%w: could not generate auction details", ErrExternalFailure)
	ErrDrafterDisabled = fmt.Errorf("%w: drafter is not configured", ErrExternalFailure)
)
