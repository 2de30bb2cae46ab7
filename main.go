package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	"auction-house/internal/dashboard"
	"auction-house/internal/drafter"
	"auction-house/internal/lifecycle"
	"auction-house/internal/notification"
	"auction-house/internal/repository"
	"auction-house/internal/seed"
	"auction-house/internal/server"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 10 * time.Second
	limiterPruneEvery   = time.Minute
	limiterClientMaxAge = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("config: failed to load", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	if cfg.UsesDevSecret() {
		utils.Warn("config: JWT_SECRET not set, using the development secret", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		utils.Fatal("server stopped with error", map[string]any{"error": err.Error()})
	}
	utils.Info("server stopped", nil)
}

func run(ctx context.Context, cfg *config.Config) error {
	repo := repository.NewMemoryRepo()

	catalogue, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	data, err := catalogue.Resolve(time.Now(), cfg.BcryptCost)
	if err != nil {
		return err
	}
	registry, err := auth.NewRegistry(data.Users)
	if err != nil {
		return err
	}
	if err := data.Populate(repo); err != nil {
		return err
	}

	notifications := notification.NewService(
		notification.WithTTL(cfg.NotificationTTL),
		notification.WithMaxSize(cfg.NotificationMax),
	)
	defer notifications.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	sessions := auth.NewLoginService(registry, tokens, notifications)

	listingDrafter := drafter.NewHTTPDrafter(cfg.DrafterURL, cfg.DrafterAPIKey, cfg.DrafterTimeout)
	if !cfg.DrafterEnabled() {
		utils.Info("drafter: DRAFTER_URL or DRAFTER_API_KEY unset, drafting disabled", nil)
	}

	auctions := auction.NewAuctionService(repo, notifications, listingDrafter)
	bids := bidding.NewBiddingService(repo, notifications)
	engine := lifecycle.NewEngine(repo, notifications,
		lifecycle.WithInterval(cfg.SweepInterval),
		lifecycle.WithUserDirectory(sessions),
	)
	limiter := server.NewBidRateLimiter(cfg.BidRatePerSec, cfg.BidRateBurst)

	router := server.SetupRouter(server.Services{
		Bidding:       bids,
		Auctions:      auctions,
		Lifecycle:     engine,
		Sessions:      sessions,
		Dashboards:    dashboard.NewService(repo, sessions),
		Notifications: notifications,
		BidLimiter:    limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return engine.Run(gctx)
	})

	g.Go(func() error {
		return limiter.RunCleanup(gctx, limiterPruneEvery, limiterClientMaxAge)
	})

	g.Go(func() error {
		<-gctx.Done()
		utils.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
