package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auctionerrors"
	"auction-house/internal/auth"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultCatalogue []byte

// UserEntry is a seeded account. Password is plain text and hashed on load.
type UserEntry struct {
	ID       string      `yaml:"id"`
	Username string      `yaml:"username"`
	Role     models.Role `yaml:"role"`
	Password string      `yaml:"password"`
}

// BidEntry is one historical bid, listed oldest first
type BidEntry struct {
	Bidder    string        `yaml:"bidder"`
	Amount    int64         `yaml:"amount"`
	PlacedAgo time.Duration `yaml:"placed_ago"`
}

// AuctionEntry is a seeded listing with times relative to load
type AuctionEntry struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description"`
	ImageURL      string        `yaml:"image_url"`
	Seller        string        `yaml:"seller"`
	StartingPrice int64         `yaml:"starting_price"`
	StartedAgo    time.Duration `yaml:"started_ago"`
	EndsIn        time.Duration `yaml:"ends_in"`
	Bids          []BidEntry    `yaml:"bids"`
}

// Catalogue is the decoded seed document
type Catalogue struct {
	Users    []UserEntry    `yaml:"users"`
	Auctions []AuctionEntry `yaml:"auctions"`
}

// Data is a catalogue resolved against a point in time
type Data struct {
	Users    []models.User
	Auctions []models.Auction
}

// Parse decodes a YAML catalogue
func Parse(data []byte) (Catalogue, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Catalogue{}, fmt.Errorf("seed: catalogue is empty")
	}
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalogue{}, fmt.Errorf("seed: decode catalogue: %w", err)
	}
	return cat, nil
}

// Load reads the catalogue at path, or the embedded demo catalogue when path is empty
func Load(path string) (Catalogue, error) {
	if path == "" {
		return Parse(defaultCatalogue)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalogue{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return Catalogue{}, fmt.Errorf("seed: %s: %w", path, err)
	}
	return cat, nil
}

// Resolve hashes passwords at bcryptCost and turns relative offsets into
// absolute times. Every auction is checked with Auction.Validate.
func (c Catalogue) Resolve(now time.Time, bcryptCost int) (Data, error) {
	now = now.UTC()
	users := make([]models.User, 0, len(c.Users))
	byName := make(map[string]models.User, len(c.Users))

	for _, u := range c.Users {
		if u.Password == "" {
			return Data{}, fmt.Errorf("seed: user %q: %w - missing password", u.Username, auctionerrors.ErrValidation)
		}
		hash, err := auth.HashSecret(u.Password, bcryptCost)
		if err != nil {
			return Data{}, fmt.Errorf("seed: user %q: %w", u.Username, err)
		}
		user := models.User{UserID: u.ID, Username: u.Username, Role: u.Role, PasswordHash: hash}
		users = append(users, user)
		byName[u.Username] = user
	}

	auctions := make([]models.Auction, 0, len(c.Auctions))
	for _, entry := range c.Auctions {
		a, err := entry.resolve(now, byName)
		if err != nil {
			return Data{}, err
		}
		auctions = append(auctions, a)
	}

	return Data{Users: users, Auctions: auctions}, nil
}

func (e AuctionEntry) resolve(now time.Time, users map[string]models.User) (models.Auction, error) {
	seller, ok := users[e.Seller]
	if !ok || seller.Role != models.RoleSeller {
		return models.Auction{}, fmt.Errorf("seed: auction %q: %w - seller %q is not a registered seller",
			e.Title, auctionerrors.ErrInvalidAuction, e.Seller)
	}

	id := e.ID
	if id == "" {
		id = utils.GenerateID()
	}
	start := now.Add(-e.StartedAgo)

	a := models.Auction{
		AuctionID:     id,
		Title:         e.Title,
		Description:   e.Description,
		ImageURL:      e.ImageURL,
		SellerID:      seller.UserID,
		SellerName:    seller.Username,
		StartingPrice: e.StartingPrice,
		CurrentPrice:  e.StartingPrice,
		StartTime:     start,
		EndTime:       now.Add(e.EndsIn),
		Bids:          make([]models.Bid, 0, len(e.Bids)),
		Status:        models.StatusActive,
	}
	if a.ImageURL == "" {
		a.ImageURL = auction.DefaultImageURL(e.Title)
	}

	for _, b := range e.Bids {
		bidder, ok := users[b.Bidder]
		if !ok || bidder.Role != models.RoleBuyer {
			return models.Auction{}, fmt.Errorf("seed: auction %q: %w - bidder %q is not a registered buyer",
				e.Title, auctionerrors.ErrInvalidAuction, b.Bidder)
		}
		placed := now.Add(-b.PlacedAgo)
		if placed.Before(start) {
			return models.Auction{}, fmt.Errorf("seed: auction %q: %w - bid by %q predates the listing",
				e.Title, auctionerrors.ErrInvalidAuction, b.Bidder)
		}
		bid := models.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: id,
			UserID:    bidder.UserID,
			Username:  bidder.Username,
			Amount:    b.Amount,
			CreatedAt: placed,
		}
		a.Bids = append([]models.Bid{bid}, a.Bids...)
		a.CurrentPrice = bid.Amount
		bidderID := bidder.UserID
		a.HighestBidderID = &bidderID
	}

	if err := a.Validate(); err != nil {
		return models.Auction{}, fmt.Errorf("seed: auction %q: %w", e.Title, err)
	}
	return a, nil
}

// Populate adds every resolved auction to repo
func (d Data) Populate(repo repository.AuctionDB) error {
	for _, a := range d.Auctions {
		if err := repo.AddAuction(a); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	utils.Info("seed: catalogue loaded", map[string]any{"users": len(d.Users), "auctions": len(d.Auctions)})
	return nil
}
