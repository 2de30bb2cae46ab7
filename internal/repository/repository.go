package repository

import (
	"fmt"
	"sync"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the auction storage interface for the marketplace
type AuctionDB interface {
	AddAuction(auction model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() []model.Auction
	ListAuctionIDs() []string
	UpdateAuction(auctionID string, mutate func(*model.Auction) error) (model.Auction, error)
	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	GetWinningBid(auctionID string) (model.Bid, error)
	GetAuctionsByBidder(userID string) ([]model.Auction, error)
}

// auctionEntry pairs an auction with the lock that serializes its mutations.
type auctionEntry struct {
	mu      sync.Mutex
	auction model.Auction
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
//
// The index lock only guards the map and ordering; each auction has its own
// mutex, so writers on different auctions never block each other.
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]*auctionEntry
	order    []string // newest listing first
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]*auctionEntry),
	}
}

// AddAuction stores a new auction after checking its invariants
func (r *MemoryRepo) AddAuction(auction model.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("add auction: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}
	if err := auction.Validate(); err != nil {
		return fmt.Errorf("add auction %s: %w", auction.AuctionID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.AuctionID]; exists {
		return fmt.Errorf("add auction %s: %w", auction.AuctionID, auctionerrors.ErrDuplicateAuction)
	}

	r.auctions[auction.AuctionID] = &auctionEntry{auction: auction.Clone()}
	r.order = append([]string{auction.AuctionID}, r.order...)
	return nil
}

// entry looks up the per-auction record under the index read lock
func (r *MemoryRepo) entry(auctionID string) (*auctionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.auctions[auctionID]
	return e, ok
}

// GetAuction returns a snapshot of one auction
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	e, ok := r.entry(auctionID)
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auction.Clone(), nil
}

// ListAuctionIDs returns auction IDs, newest listing first
func (r *MemoryRepo) ListAuctionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ListAuctions returns snapshots of every auction, newest listing first
func (r *MemoryRepo) ListAuctions() []model.Auction {
	r.mu.RLock()
	entries := make([]*auctionEntry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.auctions[id])
	}
	r.mu.RUnlock()

	out := make([]model.Auction, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.auction.Clone())
		e.mu.Unlock()
	}
	return out
}

// UpdateAuction runs mutate against a copy of the auction while holding that
// auction's lock. The copy replaces the stored auction only when mutate
// returns nil and the result still satisfies the auction invariants, so a
// failed mutation never leaves partial state behind.
func (r *MemoryRepo) UpdateAuction(auctionID string, mutate func(*model.Auction) error) (model.Auction, error) {
	e, ok := r.entry(auctionID)
	if !ok {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.auction.Clone()
	if err := mutate(&working); err != nil {
		return e.auction.Clone(), err
	}
	if err := working.Validate(); err != nil {
		return e.auction.Clone(), fmt.Errorf("update auction %s: %w", auctionID, err)
	}

	e.auction = working
	return working.Clone(), nil
}

// GetBidsByAuction returns all bids for an auction, most recent first
func (r *MemoryRepo) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	auction, err := r.GetAuction(auctionID)
	if err != nil {
		return nil, err
	}
	if len(auction.Bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return auction.Bids, nil
}

// GetWinningBid returns the highest bid for an auction
func (r *MemoryRepo) GetWinningBid(auctionID string) (model.Bid, error) {
	auction, err := r.GetAuction(auctionID)
	if err != nil {
		return model.Bid{}, err
	}

	winning, ok := auction.WinningBid()
	if !ok {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return winning, nil
}

// GetAuctionsByBidder returns all auctions a user has bid on
func (r *MemoryRepo) GetAuctionsByBidder(userID string) ([]model.Auction, error) {
	var out []model.Auction
	for _, a := range r.ListAuctions() {
		if a.HasBidFrom(userID) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, auctionerrors.ErrUserNoBids)
	}
	return out, nil
}
