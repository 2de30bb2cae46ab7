package dashboard

import (
	"fmt"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
)

// UserLister provides the registered users for the admin view
type UserLister interface {
	Users() []models.User
}

// SellerView summarizes a seller's own listings
type SellerView struct {
	Active     []models.Auction `json:"active"`
	Ended      []models.Auction `json:"ended"`
	TotalSales int64            `json:"total_sales"`
}

// BidSummary is an ACTIVE auction the buyer has bid on
type BidSummary struct {
	Auction      models.Auction `json:"auction"`
	MyHighestBid int64          `json:"my_highest_bid"`
	Leading      bool           `json:"leading"`
}

// BuyerView summarizes a buyer's bidding activity
type BuyerView struct {
	Leading []models.Auction `json:"leading"`
	Bidding []BidSummary     `json:"bidding"`
	Won     []models.Auction `json:"won"`
}

// AdminView is the marketplace-wide overview
type AdminView struct {
	Auctions    []models.Auction `json:"auctions"`
	Users       []models.User    `json:"users"`
	ActiveCount int              `json:"active_count"`
	TotalValue  int64            `json:"total_value"`
}

// View holds the one role-specific dashboard that applies to a user
type View struct {
	Role   models.Role `json:"role"`
	Seller *SellerView `json:"seller,omitempty"`
	Buyer  *BuyerView  `json:"buyer,omitempty"`
	Admin  *AdminView  `json:"admin,omitempty"`
}

// Service derives dashboards from the current auction snapshots
type Service struct {
	repo  repository.AuctionDB
	users UserLister
}

// NewService creates a dashboard Service
func NewService(repo repository.AuctionDB, users UserLister) *Service {
	return &Service{repo: repo, users: users}
}

// For returns the dashboard matching the user's role
func (s *Service) For(user *models.User) (View, error) {
	if user == nil {
		return View{}, fmt.Errorf("dashboard: %w", auctionerrors.ErrNotLoggedIn)
	}

	auctions := s.repo.ListAuctions()
	view := View{Role: user.Role}
	switch user.Role {
	case models.RoleSeller:
		v := Seller(auctions, user.UserID)
		view.Seller = &v
	case models.RoleBuyer:
		v := Buyer(auctions, user.UserID)
		view.Buyer = &v
	case models.RoleAdmin:
		v := Admin(auctions, s.users.Users())
		view.Admin = &v
	default:
		return View{}, fmt.Errorf("dashboard: %w - unknown role %q", auctionerrors.ErrAuthorization, user.Role)
	}
	return view, nil
}

// Seller builds the seller view. Total sales counts ENDED auctions that had a winner.
func Seller(auctions []models.Auction, sellerID string) SellerView {
	v := SellerView{Active: []models.Auction{}, Ended: []models.Auction{}}
	for _, a := range auctions {
		if a.SellerID != sellerID {
			continue
		}
		if a.IsActive() {
			v.Active = append(v.Active, a)
			continue
		}
		v.Ended = append(v.Ended, a)
		if a.HighestBidderID != nil {
			v.TotalSales += a.CurrentPrice
		}
	}
	return v
}

// Buyer builds the buyer view
func Buyer(auctions []models.Auction, buyerID string) BuyerView {
	v := BuyerView{Leading: []models.Auction{}, Bidding: []BidSummary{}, Won: []models.Auction{}}
	for _, a := range auctions {
		leading := a.HighestBidderID != nil && *a.HighestBidderID == buyerID
		if !a.IsActive() {
			if leading {
				v.Won = append(v.Won, a)
			}
			continue
		}
		if leading {
			v.Leading = append(v.Leading, a)
		}
		if best, ok := a.HighestBidBy(buyerID); ok {
			v.Bidding = append(v.Bidding, BidSummary{Auction: a, MyHighestBid: best, Leading: leading})
		}
	}
	return v
}

// Admin builds the admin view. Total value counts ENDED auctions that had a winner.
func Admin(auctions []models.Auction, users []models.User) AdminView {
	v := AdminView{Auctions: auctions, Users: users}
	if v.Auctions == nil {
		v.Auctions = []models.Auction{}
	}
	if v.Users == nil {
		v.Users = []models.User{}
	}
	for _, a := range auctions {
		if a.IsActive() {
			v.ActiveCount++
		} else if a.HighestBidderID != nil {
			v.TotalValue += a.CurrentPrice
		}
	}
	return v
}
