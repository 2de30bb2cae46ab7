package helpers

import (
	"time"

	"auction-house/internal/models"
)

// Request/Response DTOs

// PlaceBidRequest carries only the amount; the auction comes from the path
// and the bidder from the session. Range checks are left to the engine so
// a rejected bid still produces its notification.
type PlaceBidRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// NewBidResponse converts a model bid
func NewBidResponse(bid models.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Username:  bid.Username,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// AuctionResponse is an auction plus the values a bidding form pre-fills
type AuctionResponse struct {
	models.Auction
	BidCount            int   `json:"bid_count"`
	SuggestedMinimumBid int64 `json:"suggested_minimum_bid"`
}

// NewAuctionResponse converts a model auction
func NewAuctionResponse(a models.Auction) AuctionResponse {
	if a.Bids == nil {
		a.Bids = []models.Bid{}
	}
	return AuctionResponse{
		Auction:             a,
		BidCount:            len(a.Bids),
		SuggestedMinimumBid: models.SuggestedMinimumBid(a.CurrentPrice),
	}
}

// NewAuctionResponses converts a list of auctions, never returning nil
func NewAuctionResponses(auctions []models.Auction) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, NewAuctionResponse(a))
	}
	return out
}

// CreateAuctionRequest mirrors models.AuctionInput. Field checks happen in
// the service so the seller is told what was wrong.
type CreateAuctionRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	StartingPrice int64     `json:"starting_price"`
	EndTime       time.Time `json:"end_time"`
}

// Input converts the request to the service input
func (r CreateAuctionRequest) Input() models.AuctionInput {
	return models.AuctionInput{
		Title:         r.Title,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		StartingPrice: r.StartingPrice,
		EndTime:       r.EndTime,
	}
}

type DraftRequest struct {
	Prompt string `json:"prompt"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
