package auction

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/drafter"
	"auction-house/internal/models"
	"auction-house/internal/notification"
	"auction-house/internal/repository"
	"auction-house/utils"
)

const (
	msgNotSeller      = "You must be a seller to create an auction."
	msgInvalidAuction = "Invalid auction details: %s"
	msgDraftError     = "An error occurred while generating details."
	msgDraftUnusable  = "Could not generate auction details. Please try again."
	msgDraftReady     = "Auction details generated by AI!"
)

const imageBaseURL = "https://source.unsplash.com/800x600/?"

// draftTicket identifies one in-flight draft request for a seller
type draftTicket struct {
	seq    uint64
	cancel context.CancelFunc
}

// AuctionService creates listings and drafts their copy
type AuctionService struct {
	repo     repository.AuctionDB
	notifier notification.Notifier
	drafter  drafter.Drafter
	now      func() time.Time

	mu       sync.Mutex
	seq      uint64
	inflight map[string]draftTicket // seller ID -> latest draft request
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, notifier notification.Notifier, d drafter.Drafter) *AuctionService {
	return &AuctionService{
		repo:     repo,
		notifier: notifier,
		drafter:  d,
		now:      time.Now,
		inflight: make(map[string]draftTicket),
	}
}

// DefaultImageURL builds a stock image URL keyed on the listing title
func DefaultImageURL(title string) string {
	return imageBaseURL + strings.ReplaceAll(url.QueryEscape(title), "+", "%20")
}

// CreateAuction lists a new ACTIVE auction for seller
func (s *AuctionService) CreateAuction(seller *models.User, in models.AuctionInput) (models.Auction, error) {
	if !seller.HasRole(models.RoleSeller) {
		s.notifier.Notify(msgNotSeller, models.SeverityError)
		return models.Auction{}, fmt.Errorf("service: create auction: %w", auctionerrors.ErrNotSeller)
	}

	now := s.now().UTC()
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if reason := validateInput(in, now); reason != "" {
		s.notifier.Notify(fmt.Sprintf(msgInvalidAuction, reason), models.SeverityError)
		return models.Auction{}, fmt.Errorf("service: create auction: %w - %s", auctionerrors.ErrInvalidAuction, reason)
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		imageURL = DefaultImageURL(in.Title)
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      imageURL,
		SellerID:      seller.UserID,
		SellerName:    seller.Username,
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		StartTime:     now,
		EndTime:       in.EndTime.UTC(),
		Bids:          []models.Bid{},
		Status:        models.StatusActive,
	}

	if err := s.repo.AddAuction(auction); err != nil {
		utils.Error("auction: failed to store new auction", map[string]any{"seller_id": seller.UserID, "error": err.Error()})
		return models.Auction{}, fmt.Errorf("service: create auction: %w", err)
	}

	s.notifier.Notify(fmt.Sprintf("Auction %q created successfully!", auction.Title), models.SeveritySuccess)
	utils.Info("auction: created", map[string]any{
		"auction_id":     auction.AuctionID,
		"seller_id":      seller.UserID,
		"starting_price": auction.StartingPrice,
		"end_time":       auction.EndTime,
	})
	return auction, nil
}

func validateInput(in models.AuctionInput, now time.Time) string {
	switch {
	case in.Title == "":
		return "title is required"
	case in.Description == "":
		return "description is required"
	case in.StartingPrice <= 0:
		return "starting price must be a positive whole number"
	case !in.EndTime.After(now):
		return "end time must be in the future"
	}
	return ""
}

// GenerateDraft asks the drafter for listing copy. Only a seller's latest
// request may deliver a result: starting a new one cancels the previous
// request, and a response that arrives after being superseded is dropped
// with ErrDraftSuperseded and no notification. The draft is never turned
// into an auction here.
func (s *AuctionService) GenerateDraft(ctx context.Context, seller *models.User, prompt string) (models.AuctionDraft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.AuctionDraft{}, fmt.Errorf("service: generate draft: %w", auctionerrors.ErrEmptyPrompt)
	}
	if !seller.HasRole(models.RoleSeller) {
		s.notifier.Notify(msgNotSeller, models.SeverityError)
		return models.AuctionDraft{}, fmt.Errorf("service: generate draft: %w", auctionerrors.ErrNotSeller)
	}

	dctx, ticket := s.begin(ctx, seller.UserID)
	draft, err := s.drafter.Draft(dctx, prompt)
	if !s.finish(seller.UserID, ticket) {
		utils.Info("auction: draft superseded", map[string]any{"seller_id": seller.UserID})
		return models.AuctionDraft{}, fmt.Errorf("service: generate draft: %w", auctionerrors.ErrDraftSuperseded)
	}

	switch {
	case errors.Is(err, auctionerrors.ErrDrafterDisabled):
		s.notifier.Notify(msgDraftUnusable, models.SeverityError)
		return models.AuctionDraft{}, fmt.Errorf("service: generate draft: %w", err)
	case err != nil:
		utils.Error("auction: draft request failed", map[string]any{"seller_id": seller.UserID, "error": err.Error()})
		s.notifier.Notify(msgDraftError, models.SeverityError)
		if !errors.Is(err, auctionerrors.ErrExternalFailure) {
			err = fmt.Errorf("%w: %v", auctionerrors.ErrDraftFailed, err)
		}
		return models.AuctionDraft{}, fmt.Errorf("service: generate draft: %w", err)
	case !draft.Usable():
		s.notifier.Notify(msgDraftUnusable, models.SeverityError)
		return models.AuctionDraft{}, fmt.Errorf("service: generate draft: %w - empty result", auctionerrors.ErrDraftFailed)
	}

	out := *draft
	out.ImageURL = DefaultImageURL(out.Title)
	s.notifier.Notify(msgDraftReady, models.SeveritySuccess)
	return out, nil
}

// begin registers a new draft request for sellerID and cancels the one it replaces
func (s *AuctionService) begin(ctx context.Context, sellerID string) (context.Context, draftTicket) {
	dctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[sellerID]; ok {
		prev.cancel()
	}
	s.seq++
	ticket := draftTicket{seq: s.seq, cancel: cancel}
	s.inflight[sellerID] = ticket
	return dctx, ticket
}

// finish releases ticket and reports whether it was still the latest request
func (s *AuctionService) finish(sellerID string, ticket draftTicket) bool {
	defer ticket.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.inflight[sellerID]
	if !ok || current.seq != ticket.seq {
		return false
	}
	delete(s.inflight, sellerID)
	return true
}

// ListAuctions returns every auction, newest listing first
func (s *AuctionService) ListAuctions() []models.Auction {
	return s.repo.ListAuctions()
}

// GetAuction returns one auction by ID
func (s *AuctionService) GetAuction(auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListBySeller returns a seller's own auctions, newest first
func (s *AuctionService) ListBySeller(sellerID string) []models.Auction {
	var out []models.Auction
	for _, a := range s.repo.ListAuctions() {
		if a.SellerID == sellerID {
			out = append(out, a)
		}
	}
	return out
}
