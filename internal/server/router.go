package server

import (
	handler "auction-house/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// SessionService is what the router needs from the login service
type SessionService interface {
	handler.SessionServiceInterface
	SessionResolver
}

// Services bundles everything the HTTP layer calls into
type Services struct {
	Bidding       handler.BiddingServiceInterface
	Auctions      handler.AuctionServiceInterface
	Lifecycle     handler.LifecycleInterface
	Sessions      SessionService
	Dashboards    handler.DashboardServiceInterface
	Notifications handler.NotificationServiceInterface
	BidLimiter    *BidRateLimiter
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(s Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // correlation id for logs
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(OptionalAuth(s.Sessions))

	biddingHandler := handler.NewBiddingHandler(s.Bidding)
	auctionHandler := handler.NewAuctionHandler(s.Auctions, s.Lifecycle)
	accountHandler := handler.NewAccountHandler(s.Sessions, s.Dashboards, s.Notifications)

	router.POST("/login", accountHandler.LoginHandler)
	router.POST("/logout", accountHandler.LogoutHandler)
	router.GET("/dashboard", accountHandler.DashboardHandler)

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.POST("/drafts", auctionHandler.GenerateDraftHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/close", auctionHandler.CloseAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)

		placeBid := []gin.HandlerFunc{biddingHandler.PlaceBidHandler}
		if s.BidLimiter != nil {
			placeBid = append([]gin.HandlerFunc{s.BidLimiter.Middleware()}, placeBid...)
		}
		auctions.POST("/:auction_id/bids", placeBid...)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
	}

	notifications := router.Group("/notifications")
	{
		notifications.GET("", accountHandler.ListNotificationsHandler)
		notifications.DELETE("/:notification_id", accountHandler.DismissNotificationHandler)
	}

	return router
}
