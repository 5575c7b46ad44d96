package router

import (
	"flipearn/internal/adapter/api/handler"
	"flipearn/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupChatRouter sets up the polling chat endpoints
func SetupChatRouter(api *echo.Group, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := api.Group("/chat")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.GetChat)
	chats.GET("/user", chatHandler.GetUserChats)
	chats.POST("/send-message", chatHandler.SendMessage)
}
