package router

import (
	"farmlink/internal/adapter/api/handler"
	"farmlink/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupChatRouter sets up all conversation routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/conversations")
	chatGroup.Use(authMiddleware.Authenticate)

	// Conversation management
	chatGroup.POST("", chatHandler.StartConversation)
	chatGroup.GET("", chatHandler.ListConversations)
	chatGroup.PUT("/:id/read", chatHandler.MarkConversationRead)

	// Message management
	chatGroup.GET("/:id/messages", chatHandler.GetMessages)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)

	// Offer lifecycle
	chatGroup.POST("/:id/offers", chatHandler.CreateOffer)
	chatGroup.POST("/:id/offers/respond", chatHandler.RespondToOffer)
}
