package bidding

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/notification"
	"auction-house/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	buyer1  = &model.User{UserID: "buyer1", Username: "buyer1", Role: model.RoleBuyer}
	buyer2  = &model.User{UserID: "buyer2", Username: "buyer2", Role: model.RoleBuyer}
	seller7 = &model.User{UserID: "7", Username: "seller7", Role: model.RoleSeller}
	admin   = &model.User{UserID: "admin", Username: "admin", Role: model.RoleAdmin}
)

// Helper to create an ACTIVE auction owned by seller7
func newAuction(auctionID string, price int64, endTime time.Time) model.Auction {
	return model.Auction{
		AuctionID:     auctionID,
		Title:         "Title " + auctionID,
		Description:   "Description " + auctionID,
		SellerID:      seller7.UserID,
		SellerName:    seller7.Username,
		StartingPrice: price,
		CurrentPrice:  price,
		StartTime:     endTime.Add(-time.Hour),
		EndTime:       endTime,
		Bids:          []model.Bid{},
		Status:        model.StatusActive,
	}
}

// setup wires a real repository and a long-lived notification queue
func setup(t *testing.T, auctions ...model.Auction) (*BiddingService, *repository.MemoryRepo, *notification.Service) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	for _, a := range auctions {
		require.NoError(t, repo.AddAuction(a))
	}
	notes := notification.NewService(notification.WithTTL(time.Minute))
	t.Cleanup(notes.Close)
	return NewBiddingService(repo, notes), repo, notes
}

// Tests PlaceBid preconditions
func TestBiddingService_PlaceBid_Rejections(t *testing.T) {
	future := time.Now().Add(time.Hour)

	ended := newAuction("ended", 90, future)
	ended.Status = model.StatusEnded

	pastDeadline := newAuction("past-deadline", 90, time.Now().Add(-time.Second))

	buyerOwned := newAuction("buyer-owned", 90, future)
	buyerOwned.SellerID = buyer1.UserID

	tests := []struct {
		name        string
		auction     model.Auction
		auctionID   string
		bidder      *model.User
		amount      int64
		wantErr     error
		wantMessage string
	}{
		{name: "not_logged_in", auction: newAuction("a1", 90, future), auctionID: "a1", bidder: nil, amount: 100, wantErr: auctionerrors.ErrNotLoggedIn, wantMessage: msgNotLoggedIn},
		{name: "seller_cannot_bid", auction: newAuction("a1", 90, future), auctionID: "a1", bidder: seller7, amount: 100, wantErr: auctionerrors.ErrNotBuyer, wantMessage: msgNotBuyer},
		{name: "admin_cannot_bid", auction: newAuction("a1", 90, future), auctionID: "a1", bidder: admin, amount: 100, wantErr: auctionerrors.ErrNotBuyer, wantMessage: msgNotBuyer},
		{name: "auction_ended", auction: ended, auctionID: "ended", bidder: buyer1, amount: 100, wantErr: auctionerrors.ErrAuctionEnded, wantMessage: msgEnded},
		{name: "deadline_passed_before_sweep", auction: pastDeadline, auctionID: "past-deadline", bidder: buyer1, amount: 100, wantErr: auctionerrors.ErrAuctionEnded, wantMessage: msgEnded},
		{name: "equal_to_current_price", auction: newAuction("a1", 90, future), auctionID: "a1", bidder: buyer1, amount: 90, wantErr: auctionerrors.ErrBidTooLow, wantMessage: msgTooLow},
		{name: "below_current_price", auction: newAuction("a1", 90, future), auctionID: "a1", bidder: buyer1, amount: 10, wantErr: auctionerrors.ErrBidTooLow, wantMessage: msgTooLow},
		{name: "zero_amount", auction: newAuction("a1", 90, future), auctionID: "a1", bidder: buyer1, amount: 0, wantErr: auctionerrors.ErrBidTooLow, wantMessage: msgTooLow},
		{name: "own_auction", auction: buyerOwned, auctionID: "buyer-owned", bidder: buyer1, amount: 100, wantErr: auctionerrors.ErrSelfBid, wantMessage: msgSelfBid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, repo, notes := setup(t, tc.auction)
			before, err := repo.GetAuction(tc.auction.AuctionID)
			require.NoError(t, err)

			_, err = svc.PlaceBid(tc.auctionID, tc.bidder, tc.amount)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantErr), "expected error: %v, got: %v", tc.wantErr, err)

			list := notes.List()
			require.Len(t, list, 1)
			require.Equal(t, tc.wantMessage, list[0].Message)
			require.Equal(t, model.SeverityError, list[0].Type)

			after, err := repo.GetAuction(tc.auction.AuctionID)
			require.NoError(t, err)
			require.Equal(t, before, after)
		})
	}
}

func TestBiddingService_PlaceBid_SelfBidIsAuthorizationFailure(t *testing.T) {
	t.Parallel()

	svc, repo, _ := setup(t, newAuction("a1", 90, time.Now().Add(time.Hour)))

	for _, amount := range []int64{1, 91, 1_000_000} {
		_, err := svc.PlaceBid("a1", seller7, amount)
		require.ErrorIs(t, err, auctionerrors.ErrAuthorization)
	}

	a, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Empty(t, a.Bids)
	require.Nil(t, a.HighestBidderID)
}

func TestBiddingService_PlaceBid_AuctionNotFoundIsSilent(t *testing.T) {
	t.Parallel()

	svc, _, notes := setup(t)

	_, err := svc.PlaceBid("missing", buyer1, 100)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	require.Empty(t, notes.List())
}

func TestBiddingService_PlaceBid_Success(t *testing.T) {
	t.Parallel()

	svc, repo, notes := setup(t, newAuction("a1", 90, time.Now().Add(time.Hour)))
	now := time.Now().UTC()

	bid, err := svc.PlaceBid("a1", buyer1, 100)
	require.NoError(t, err)

	// Validate generated BidID
	parsed, parseErr := uuid.Parse(bid.BidID)
	require.NoError(t, parseErr, "BidID should be a valid UUID")
	require.Equal(t, uuid.Version(7), parsed.Version())

	require.Equal(t, "a1", bid.AuctionID)
	require.Equal(t, buyer1.UserID, bid.UserID)
	require.Equal(t, buyer1.Username, bid.Username)
	require.Equal(t, int64(100), bid.Amount)
	require.WithinDuration(t, now, bid.CreatedAt, 2*time.Second)

	a, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, int64(100), a.CurrentPrice)
	require.NotNil(t, a.HighestBidderID)
	require.Equal(t, buyer1.UserID, *a.HighestBidderID)
	require.Equal(t, []model.Bid{bid}, a.Bids)

	list := notes.List()
	require.Len(t, list, 1)
	require.Equal(t, model.SeveritySuccess, list[0].Type)
	require.Equal(t, `Successfully placed bid of $100 on "Title a1"!`, list[0].Message)
}

func TestBiddingService_PlaceBid_Monotonicity(t *testing.T) {
	t.Parallel()

	svc, repo, _ := setup(t, newAuction("a1", 50, time.Now().Add(time.Hour)))

	attempts := []struct {
		bidder *model.User
		amount int64
		accept bool
	}{
		{buyer1, 60, true},
		{buyer2, 55, false},
		{buyer2, 60, false},
		{buyer2, 75, true},
		{buyer1, 74, false},
		{buyer1, 200, true},
	}

	var lastPrice int64 = 50
	for i, at := range attempts {
		_, err := svc.PlaceBid("a1", at.bidder, at.amount)
		require.Equal(t, at.accept, err == nil, "attempt %d", i)

		a, getErr := repo.GetAuction("a1")
		require.NoError(t, getErr)
		require.GreaterOrEqual(t, a.CurrentPrice, lastPrice)
		require.NoError(t, a.Validate())
		lastPrice = a.CurrentPrice
	}

	a, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Len(t, a.Bids, 3)
	require.Equal(t, int64(200), a.CurrentPrice)
	require.Equal(t, buyer1.UserID, *a.HighestBidderID)
}

// Two racing bids at 100 and 110 against a price of 90. Whichever order the
// per-auction lock admits them in, the final price is 110: either 110 lands
// first and 100 is rejected, or 100 lands first and 110 still beats it.
func TestBiddingService_PlaceBid_RacingPair(t *testing.T) {
	t.Parallel()

	for round := 0; round < 50; round++ {
		svc, repo, _ := setup(t, newAuction("a1", 90, time.Now().Add(time.Hour)))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() { defer wg.Done(); _, errs[0] = svc.PlaceBid("a1", buyer1, 100) }()
		go func() { defer wg.Done(); _, errs[1] = svc.PlaceBid("a1", buyer2, 110) }()
		wg.Wait()

		require.NoError(t, errs[1])

		a, err := repo.GetAuction("a1")
		require.NoError(t, err)
		require.Equal(t, int64(110), a.CurrentPrice)
		require.Equal(t, buyer2.UserID, *a.HighestBidderID)
		require.NoError(t, a.Validate())

		if errs[0] == nil {
			require.Len(t, a.Bids, 2)
		} else {
			require.ErrorIs(t, errs[0], auctionerrors.ErrBidTooLow)
			require.Len(t, a.Bids, 1)
		}
	}
}

func TestBiddingService_PlaceBid_ConcurrentBidders(t *testing.T) {
	t.Parallel()

	svc, repo, notes := setup(t, newAuction("a1", 50, time.Now().Add(time.Hour)))

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	count := 200

	for i := 0; i < count; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			bidder := &model.User{UserID: fmt.Sprintf("buyer-%d", i), Username: fmt.Sprintf("buyer-%d", i), Role: model.RoleBuyer}
			if _, err := svc.PlaceBid("a1", bidder, int64(51+i%40)); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	a, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	require.Len(t, a.Bids, accepted)
	require.Equal(t, int64(90), a.CurrentPrice)

	// exactly one notification per attempt
	require.Len(t, notes.List(), count)
}

// Mock-backed paths that a real repository cannot produce
func TestBiddingService_PlaceBid_RepositoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	notes := notification.NewService(notification.WithTTL(time.Minute))
	defer notes.Close()
	service := NewBiddingService(mockRepo, notes)

	auction := newAuction("a1", 90, time.Now().Add(time.Hour))
	mockRepo.EXPECT().
		UpdateAuction("a1", gomock.Any()).
		DoAndReturn(func(_ string, mutate func(*model.Auction) error) (model.Auction, error) {
			working := auction.Clone()
			require.NoError(t, mutate(&working))
			return auction, fmt.Errorf("update auction a1: %w", auctionerrors.ErrInvariantBroken)
		})

	_, err := service.PlaceBid("a1", buyer1, 100)
	require.ErrorIs(t, err, auctionerrors.ErrInvariantBroken)

	list := notes.List()
	require.Len(t, list, 1)
	require.Equal(t, msgBidFailed, list[0].Message)
}

// Tests GetBidsForAuction
func TestBiddingService_GetBidsForAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo, notification.NewService())

	now := time.Now().UTC()
	bidsExample := []model.Bid{
		{BidID: "bid2", AuctionID: "a1", UserID: "user2", Amount: 150, CreatedAt: now.Add(time.Second)},
		{BidID: "bid1", AuctionID: "a1", UserID: "user1", Amount: 100, CreatedAt: now},
	}

	tests := []struct {
		name          string
		auctionID     string
		mockSetup     func()
		expectError   bool
		expectedError error
		expectedBids  []model.Bid
	}{
		{
			name:      "valid_auction_with_bids",
			auctionID: "a1",
			mockSetup: func() {
				mockRepo.EXPECT().GetBidsByAuction("a1").Return(bidsExample, nil)
			},
			expectedBids: bidsExample,
		},
		{
			name:          "empty_auctionID",
			auctionID:     "",
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:      "no_bids",
			auctionID: "a2",
			mockSetup: func() {
				mockRepo.EXPECT().GetBidsByAuction("a2").Return(nil, auctionerrors.ErrNoBids)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrNoBids,
		},
		{
			name:      "repo_error",
			auctionID: "a3",
			mockSetup: func() {
				mockRepo.EXPECT().GetBidsByAuction("a3").Return(nil, errors.New("store failure"))
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			bids, err := service.GetBidsForAuction(tc.auctionID)
			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedBids, bids)
			}
		})
	}
}

// Test GetWinningBid
func TestBiddingService_GetWinningBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo, notification.NewService())

	winner := model.Bid{BidID: uuid.NewString(), AuctionID: "a1", UserID: "user1", Amount: 100, CreatedAt: time.Now().UTC()}

	tests := []struct {
		name        string
		auctionID   string
		mockSetup   func()
		expectError bool
	}{
		{
			name:      "valid_auction_with_winning_bid",
			auctionID: "a1",
			mockSetup: func() {
				mockRepo.EXPECT().GetWinningBid("a1").Return(winner, nil)
			},
		},
		{
			name:        "empty_auctionID",
			auctionID:   "",
			mockSetup:   func() {},
			expectError: true,
		},
		{
			name:      "repo_returns_no_bids",
			auctionID: "a2",
			mockSetup: func() {
				mockRepo.EXPECT().GetWinningBid("a2").Return(model.Bid{}, auctionerrors.ErrNoBids)
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			bid, err := service.GetWinningBid(tc.auctionID)
			if tc.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, winner, bid)
			}
		})
	}
}

// Test GetAuctionsByBidder
func TestBiddingService_GetAuctionsByBidder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo, notification.NewService())

	auctionsExample := []model.Auction{newAuction("a1", 10, time.Now().Add(time.Hour))}

	tests := []struct {
		name             string
		userID           string
		mockSetup        func()
		expectedError    error
		expectError      bool
		expectedAuctions []model.Auction
	}{
		{
			name:   "valid_user_with_auctions",
			userID: "user1",
			mockSetup: func() {
				mockRepo.EXPECT().GetAuctionsByBidder("user1").Return(auctionsExample, nil)
			},
			expectedAuctions: auctionsExample,
		},
		{
			name:          "empty_userID",
			userID:        "",
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:   "user_without_bids",
			userID: "user2",
			mockSetup: func() {
				mockRepo.EXPECT().GetAuctionsByBidder("user2").Return(nil, auctionerrors.ErrUserNoBids)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrUserNoBids,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			auctions, err := service.GetAuctionsByBidder(tc.userID)
			if tc.expectError {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedAuctions, auctions)
			}
		})
	}
}
