package handler

import (
	"context"
	"net/http"

	"auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_handler.go -package=handler

type AuctionServiceInterface interface {
	CreateAuction(seller *models.User, in models.AuctionInput) (models.Auction, error)
	GenerateDraft(ctx context.Context, seller *models.User, prompt string) (models.AuctionDraft, error)
	ListAuctions() []models.Auction
	GetAuction(auctionID string) (models.Auction, error)
}

type LifecycleInterface interface {
	CloseEarly(auctionID string, user *models.User) error
}

type AuctionHandler struct {
	service   AuctionServiceInterface
	lifecycle LifecycleInterface
}

func NewAuctionHandler(service AuctionServiceInterface, lifecycle LifecycleInterface) *AuctionHandler {
	return &AuctionHandler{service: service, lifecycle: lifecycle}
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	auctions := h.service.ListAuctions()
	if status := c.Query("status"); status != "" {
		filtered := auctions[:0:0]
		for _, a := range auctions {
			if string(a.Status) == status {
				filtered = append(filtered, a)
			}
		}
		auctions = filtered
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponses(auctions), "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{"count": len(auctions)})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(auctionID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction retrieved successfully")
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	user := helpers.CurrentUser(c)

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(user, req.Input())
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("CreateAuctionHandler: auction rejected", map[string]any{"user_id": helpers.UserField(user), "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  auction.SellerID,
	})
}

// GenerateDraftHandler handles POST /auctions/drafts
func (h *AuctionHandler) GenerateDraftHandler(c *gin.Context) {
	user := helpers.CurrentUser(c)

	var req helpers.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "GenerateDraftHandler", err)
		return
	}

	draft, err := h.service.GenerateDraft(c.Request.Context(), user, req.Prompt)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("GenerateDraftHandler: draft not produced", map[string]any{"user_id": helpers.UserField(user), "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, draft, "draft generated successfully")
}

// CloseAuctionHandler handles POST /auctions/:auction_id/close
func (h *AuctionHandler) CloseAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	user := helpers.CurrentUser(c)

	if err := h.lifecycle.CloseEarly(auctionID, user); err != nil {
		helpers.RespondError(c, err)
		utils.Warn("CloseAuctionHandler: close rejected", map[string]any{
			"auction_id": auctionID,
			"user_id":    helpers.UserField(user),
			"error":      err.Error(),
		})
		return
	}

	auction, err := h.service.GetAuction(auctionID)
	if err != nil {
		helpers.RespondError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction closed")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed", map[string]any{"auction_id": auctionID, "user_id": helpers.UserField(user)})
}
