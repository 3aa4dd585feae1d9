package router

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/adapter/api/handler"
	"unimarket/internal/adapter/api/middleware"
)

// Handlers collects every handler the router wires. Built once in main and
// passed down so routes never reach for globals.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Exchange  *handler.ExchangeHandler
	Room      *handler.RoomHandler
	Message   *handler.MessageHandler
	WebSocket *handler.WebSocketHandler
	Health    *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupAuthRouter(e, h.Auth)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupExchangeRouter(e, h.Exchange, authMiddleware)
	SetupRoomRouter(e, h.Room, authMiddleware)
	SetupMessageRouter(e, h.Message, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
}
