package models

import (
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
)

// Role is the authorization level of a User
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents a participant in the auction
type User struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// HasRole is nil-safe so engines can check an unauthenticated caller directly.
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Role == role
}

// AuctionStatus is either ACTIVE or ENDED. ENDED is terminal.
type AuctionStatus string

const (
	StatusActive AuctionStatus = "ACTIVE"
	StatusEnded  AuctionStatus = "ENDED"
)

// Bid represents a user's accepted bid on an auction. Bids are never mutated.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Auction represents a listed item accepting bids until its deadline.
// Bids is ordered most recent first.
type Auction struct {
	AuctionID       string        `json:"auction_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	ImageURL        string        `json:"image_url"`
	SellerID        string        `json:"seller_id"`
	SellerName      string        `json:"seller_name"`
	StartingPrice   int64         `json:"starting_price"`
	CurrentPrice    int64         `json:"current_price"`
	HighestBidderID *string       `json:"highest_bidder_id,omitempty"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Bids            []Bid         `json:"bids"`
	Status          AuctionStatus `json:"status"`
}

// Clone returns a deep copy that shares no mutable state with a.
func (a Auction) Clone() Auction {
	out := a
	out.Bids = append(make([]Bid, 0, len(a.Bids)), a.Bids...)
	if a.HighestBidderID != nil {
		id := *a.HighestBidderID
		out.HighestBidderID = &id
	}
	return out
}

// WinningBid returns the most recent accepted bid, which is always the highest.
func (a Auction) WinningBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	return a.Bids[0], true
}

// IsActive reports whether a is ACTIVE
func (a Auction) IsActive() bool {
	return a.Status == StatusActive
}

// Expired reports whether an ACTIVE auction's deadline has been reached at now.
func (a Auction) Expired(now time.Time) bool {
	return a.Status == StatusActive && !a.EndTime.After(now)
}

// HasBidFrom reports whether userID placed any bid on a
func (a Auction) HasBidFrom(userID string) bool {
	for _, b := range a.Bids {
		if b.UserID == userID {
			return true
		}
	}
	return false
}

// HighestBidBy returns userID's largest bid amount on a.
func (a Auction) HighestBidBy(userID string) (int64, bool) {
	var best int64
	found := false
	for _, b := range a.Bids {
		if b.UserID == userID && (!found || b.Amount > best) {
			best = b.Amount
			found = true
		}
	}
	return best, found
}

// Validate checks the derived-field rules that every stored auction must satisfy.
func (a Auction) Validate() error {
	if a.StartingPrice <= 0 {
		return fmt.Errorf("%w: starting price %d is not positive", auctionerrors.ErrInvariantBroken, a.StartingPrice)
	}
	if a.Status != StatusActive && a.Status != StatusEnded {
		return fmt.Errorf("%w: unknown status %q", auctionerrors.ErrInvariantBroken, a.Status)
	}

	if len(a.Bids) == 0 {
		if a.CurrentPrice != a.StartingPrice {
			return fmt.Errorf("%w: current price %d differs from starting price %d with no bids",
				auctionerrors.ErrInvariantBroken, a.CurrentPrice, a.StartingPrice)
		}
		if a.HighestBidderID != nil {
			return fmt.Errorf("%w: highest bidder set with no bids", auctionerrors.ErrInvariantBroken)
		}
		return nil
	}

	head := a.Bids[0]
	if a.CurrentPrice != head.Amount {
		return fmt.Errorf("%w: current price %d differs from latest bid %d",
			auctionerrors.ErrInvariantBroken, a.CurrentPrice, head.Amount)
	}
	if a.HighestBidderID == nil || *a.HighestBidderID != head.UserID {
		return fmt.Errorf("%w: highest bidder does not match latest bid", auctionerrors.ErrInvariantBroken)
	}

	// walk oldest to newest
	prev := a.StartingPrice
	for i := len(a.Bids) - 1; i >= 0; i-- {
		b := a.Bids[i]
		if b.UserID == a.SellerID {
			return fmt.Errorf("%w: seller %s holds bid %s", auctionerrors.ErrInvariantBroken, a.SellerID, b.BidID)
		}
		if b.Amount <= prev {
			return fmt.Errorf("%w: bid %s amount %d does not exceed %d",
				auctionerrors.ErrInvariantBroken, b.BidID, b.Amount, prev)
		}
		prev = b.Amount
	}
	return nil
}

// SuggestedMinimumBid is the next bid a UI should pre-fill: current price plus
// 5% rounded up, at least one dollar. It is a hint and is not enforced.
func SuggestedMinimumBid(currentPrice int64) int64 {
	step := (currentPrice*5 + 99) / 100
	if step < 1 {
		step = 1
	}
	return currentPrice + step
}

// AuctionInput is the seller-supplied part of a new auction
type AuctionInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	StartingPrice int64     `json:"starting_price"`
	EndTime       time.Time `json:"end_time"`
}

// AuctionDraft is generated listing copy. It only pre-fills the create form.
type AuctionDraft struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartingPrice int64  `json:"startingPrice"`
	ImageURL      string `json:"image_url,omitempty"`
}

// Usable reports whether a draft carries enough to pre-fill a listing.
func (d *AuctionDraft) Usable() bool {
	return d != nil && d.Title != "" && d.Description != "" && d.StartingPrice > 0
}
