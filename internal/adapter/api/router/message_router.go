package router

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/adapter/api/handler"
	"unimarket/internal/adapter/api/middleware"
)

func SetupMessageRouter(e *echo.Echo, messageHandler *handler.MessageHandler, authMiddleware *middleware.AuthMiddleware) {
	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	conversations.GET("", messageHandler.ListConversations)
	conversations.POST("", messageHandler.ResolveConversation)
	conversations.GET("/:id/messages", messageHandler.GetMessages)
	conversations.POST("/:id/messages", messageHandler.SendMessage)
	conversations.POST("/:id/read", messageHandler.MarkAsRead)
}
