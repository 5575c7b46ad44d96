package router

import (
	"flipearn/internal/adapter/api/handler"
	"flipearn/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAdminRouter(api *echo.Group, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware) {
	// Admin routes - require authentication and the admin claim
	admin := api.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.AdminOnly)

	admin.PUT("/listing/:id/ban", adminHandler.BanListing)
	admin.PUT("/listing/:id/credential-changed", adminHandler.MarkCredentialChanged)
}
