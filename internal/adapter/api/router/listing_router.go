package router

import (
	"flipearn/internal/adapter/api/handler"
	"flipearn/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupListingRouter(api *echo.Group, listingHandler *handler.ListingHandler, ledgerHandler *handler.LedgerHandler, authMiddleware *middleware.AuthMiddleware) {
	listings := api.Group("/listing")

	// Public routes
	listings.GET("/public", listingHandler.GetPublicListings)

	// Protected routes
	protected := listings.Group("")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", listingHandler.CreateListing)
	protected.PUT("", listingHandler.UpdateListing)
	protected.GET("/user", listingHandler.GetUserListings)
	protected.PUT("/:id/status", listingHandler.ToggleStatus)
	protected.DELETE("/:listingId", listingHandler.DeleteListing)
	protected.POST("/add-credential", listingHandler.AddCredential)
	protected.PUT("/featured/:id", listingHandler.MarkFeatured)

	protected.GET("/user-orders", ledgerHandler.GetUserOrders)
	protected.GET("/balance", ledgerHandler.GetBalance)
	protected.GET("/withdrawals", ledgerHandler.GetWithdrawals)
	protected.POST("/withdraw", ledgerHandler.Withdraw)
	protected.POST("/purchase-account/:listingId", ledgerHandler.PurchaseAccount)
}
