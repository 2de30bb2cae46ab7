package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/notification"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// DefaultInterval is the sweep cadence used by Run
const DefaultInterval = time.Second

const msgNoPermission = "You don't have permission to perform this action."

// errNotDue aborts an UpdateAuction whose auction no longer needs ending.
var errNotDue = errors.New("auction not due")

// UserDirectory resolves user IDs to display names for end-of-auction messages
type UserDirectory interface {
	Lookup(userID string) (*model.User, bool)
}

// Option customizes Engine construction.
type Option func(*Engine)

// WithClock injects the time source used by Run and CloseEarly.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithInterval overrides the sweep cadence. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithUserDirectory sets the directory used to name winners.
func WithUserDirectory(dir UserDirectory) Option {
	return func(e *Engine) {
		e.users = dir
	}
}

// Engine moves auctions from ACTIVE to ENDED, either when their deadline
// passes or when an admin closes them early.
type Engine struct {
	repo     repository.AuctionDB
	notifier notification.Notifier
	users    UserDirectory
	interval time.Duration
	now      func() time.Time
}

// NewEngine creates a lifecycle engine over repo
func NewEngine(repo repository.AuctionDB, notifier notification.Notifier, opts ...Option) *Engine {
	e := &Engine{
		repo:     repo,
		notifier: notifier,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// SweepExpired ends every ACTIVE auction whose deadline is at or before now
// and returns the IDs it ended. Running it twice with the same now ends
// nothing the second time.
func (e *Engine) SweepExpired(now time.Time) []string {
	var ended []string

	for _, snapshot := range e.repo.ListAuctions() {
		if !snapshot.Expired(now) {
			continue
		}

		// re-check under the auction's lock; a bid or an early close may have won the race
		updated, err := e.repo.UpdateAuction(snapshot.AuctionID, func(a *model.Auction) error {
			if !a.Expired(now) {
				return errNotDue
			}
			a.Status = model.StatusEnded
			return nil
		})
		if err != nil {
			if !errors.Is(err, errNotDue) && !errors.Is(err, auctionerrors.ErrAuctionNotFound) {
				utils.Error("lifecycle: failed to end auction", map[string]any{"auction_id": snapshot.AuctionID, "error": err.Error()})
			}
			continue
		}

		ended = append(ended, updated.AuctionID)
		e.notifier.Notify(fmt.Sprintf("Auction for %q has ended. Winner: %s at $%d.",
			updated.Title, e.winnerName(updated), updated.CurrentPrice), model.SeverityInfo)
	}

	if len(ended) > 0 {
		utils.Info("lifecycle: auctions ended", map[string]any{"count": len(ended), "auction_ids": ended})
	}
	return ended
}

// CloseEarly ends an ACTIVE auction on an admin's request. Closing a missing
// or already ENDED auction changes nothing and emits nothing.
func (e *Engine) CloseEarly(auctionID string, user *model.User) error {
	if !user.HasRole(model.RoleAdmin) {
		e.notifier.Notify(msgNoPermission, model.SeverityError)
		return fmt.Errorf("lifecycle: close %s: %w", auctionID, auctionerrors.ErrNotAdmin)
	}

	now := e.now().UTC()
	updated, err := e.repo.UpdateAuction(auctionID, func(a *model.Auction) error {
		if !a.IsActive() {
			return errNotDue
		}
		a.Status = model.StatusEnded
		a.EndTime = now
		return nil
	})
	switch {
	case errors.Is(err, errNotDue):
		return nil
	case err != nil:
		return fmt.Errorf("lifecycle: close %s: %w", auctionID, err)
	}

	e.notifier.Notify(fmt.Sprintf("Auction for %q has been closed by an admin.", updated.Title), model.SeverityInfo)
	utils.Info("lifecycle: auction closed early", map[string]any{"auction_id": auctionID, "admin_id": user.UserID})
	return nil
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// A single goroutine drives the ticker, so sweeps never overlap.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	utils.Info("lifecycle: sweeper started", map[string]any{"interval": e.interval.String()})
	e.SweepExpired(e.now())

	for {
		select {
		case <-ctx.Done():
			utils.Info("lifecycle: sweeper stopped", nil)
			return nil
		case <-ticker.C:
			e.SweepExpired(e.now())
		}
	}
}

func (e *Engine) winnerName(a model.Auction) string {
	if a.HighestBidderID == nil {
		return "No one"
	}
	if e.users != nil {
		if u, ok := e.users.Lookup(*a.HighestBidderID); ok {
			return u.Username
		}
	}
	if bid, ok := a.WinningBid(); ok && bid.Username != "" {
		return bid.Username
	}
	return *a.HighestBidderID
}
