package router

import (
	"toolmart/internal/adapter/api/handler"
	"toolmart/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupMessagingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	messagingHandler := handler.GetMessagingHandler()

	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)
	conversations.GET("", messagingHandler.ListConversations)
	conversations.GET("/:userId/messages", messagingHandler.GetConversation)
	conversations.POST("/:userId/messages", messagingHandler.SendMessage)
	conversations.PUT("/:userId/read", messagingHandler.MarkConversationRead)
}
