package router

import (
	"github.com/labstack/echo/v4"

	"cassmarket/internal/adapter/api/handler"
	"cassmarket/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/conversations")
	chatGroup.Use(authMiddleware.Authenticate) // All chat endpoints require authentication

	// Conversation management
	chatGroup.POST("", chatHandler.CreateConversation)        // POST /v1/conversations - Create or reuse a conversation
	chatGroup.GET("", chatHandler.GetUserConversations)       // GET /v1/conversations - List user's conversations
	chatGroup.PUT("/:id/read", chatHandler.MarkAsRead)        // PUT /v1/conversations/:id/read - Mark as read
	chatGroup.DELETE("/:id", chatHandler.DeleteConversation)  // DELETE /v1/conversations/:id - Hide for this user

	// Message management
	chatGroup.POST("/:id/messages", chatHandler.SendMessage) // POST /v1/conversations/:id/messages - Send message
	chatGroup.GET("/:id/messages", chatHandler.GetMessages)  // GET /v1/conversations/:id/messages - Get messages
}
