package bidding

import (
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/notification"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// User-facing rejection messages, one per failed precondition
const (
	msgNotLoggedIn = "You must be logged in to place a bid."
	msgNotBuyer    = "Only buyers can place bids."
	msgEnded       = "This auction has already ended."
	msgTooLow      = "Your bid must be higher than the current price."
	msgSelfBid     = "You cannot bid on your own auction."
	msgBidFailed   = "Your bid could not be placed. Please try again."
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo     repository.AuctionDB
	notifier notification.Notifier
	now      func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, notifier notification.Notifier) *BiddingService {
	return &BiddingService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceBid validates and records a bid. Every rejection except a missing
// auction emits exactly one error notification and leaves the auction untouched.
//
// The auction-level checks and the mutation run inside the repository's
// per-auction critical section, so concurrent bids on one auction are
// accepted in a strict total order and never against an ENDED auction.
func (s *BiddingService) PlaceBid(auctionID string, bidder *models.User, amount int64) (models.Bid, error) {
	if bidder == nil {
		s.notifier.Notify(msgNotLoggedIn, models.SeverityError)
		return models.Bid{}, fmt.Errorf("service: place bid on %s: %w", auctionID, auctionerrors.ErrNotLoggedIn)
	}
	if bidder.Role != models.RoleBuyer {
		s.notifier.Notify(msgNotBuyer, models.SeverityError)
		return models.Bid{}, fmt.Errorf("service: place bid on %s by %s: %w", auctionID, bidder.UserID, auctionerrors.ErrNotBuyer)
	}

	now := s.now().UTC()
	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		UserID:    bidder.UserID,
		Username:  bidder.Username,
		Amount:    amount,
		CreatedAt: now,
	}

	var rejection string
	updated, err := s.repo.UpdateAuction(auctionID, func(a *models.Auction) error {
		// a passed deadline counts as ended even before the sweep marks it
		if !a.IsActive() || a.Expired(now) {
			rejection = msgEnded
			return auctionerrors.ErrAuctionEnded
		}
		if amount <= a.CurrentPrice {
			rejection = msgTooLow
			return fmt.Errorf("%w - current price is %d", auctionerrors.ErrBidTooLow, a.CurrentPrice)
		}
		if bidder.UserID == a.SellerID {
			rejection = msgSelfBid
			return auctionerrors.ErrSelfBid
		}

		a.Bids = append([]models.Bid{bid}, a.Bids...)
		a.CurrentPrice = amount
		bidderID := bidder.UserID
		a.HighestBidderID = &bidderID
		return nil
	})
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			utils.Info("bidding: auction vanished before bid", map[string]any{"auction_id": auctionID, "user_id": bidder.UserID})
			return models.Bid{}, fmt.Errorf("service: place bid on %s: %w", auctionID, err)
		}
		if rejection == "" {
			rejection = msgBidFailed
			utils.Error("bidding: unexpected failure", map[string]any{"auction_id": auctionID, "error": err.Error()})
		}
		s.notifier.Notify(rejection, models.SeverityError)
		return models.Bid{}, fmt.Errorf("service: place bid on %s by %s: %w", auctionID, bidder.UserID, err)
	}

	s.notifier.Notify(fmt.Sprintf("Successfully placed bid of $%d on %q!", amount, updated.Title), models.SeveritySuccess)
	utils.Info("bidding: bid accepted", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bid.BidID,
		"user_id":    bidder.UserID,
		"amount":     amount,
	})
	return bid, nil
}

// GetBidsForAuction returns all bids for a specific auction, most recent first
func (s *BiddingService) GetBidsForAuction(auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid for a specific auction
func (s *BiddingService) GetWinningBid(auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	winningBid, err := s.repo.GetWinningBid(auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	return winningBid, nil
}

// GetAuctionsByBidder returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByBidder(userID string) ([]models.Auction, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByBidder(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", userID, err)
	}

	return auctions, nil
}
