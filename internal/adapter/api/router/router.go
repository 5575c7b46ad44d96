package router

import (
	"flipearn/internal/adapter/api/handler"
	"flipearn/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Listing *handler.ListingHandler
	Ledger  *handler.LedgerHandler
	Chat    *handler.ChatHandler
	Admin   *handler.AdminHandler
	Health  *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	api := e.Group("/api")

	SetupListingRouter(api, h.Listing, h.Ledger, authMiddleware)
	SetupChatRouter(api, h.Chat, authMiddleware)
	SetupAdminRouter(api, h.Admin, authMiddleware)
	SetupHealthRouter(e, h.Health)
}
