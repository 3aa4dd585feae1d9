package router

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/adapter/api/handler"
	"unimarket/internal/adapter/api/middleware"
)

func SetupRoomRouter(e *echo.Echo, roomHandler *handler.RoomHandler, authMiddleware *middleware.AuthMiddleware) {
	rooms := e.Group("/v1/rooms")
	rooms.Use(authMiddleware.Authenticate)

	rooms.GET("", roomHandler.ListListings)
	rooms.POST("", roomHandler.CreateListing)
	rooms.GET("/mine", roomHandler.MyListings)
	rooms.PATCH("/:id/status", roomHandler.UpdateListingStatus)
	rooms.DELETE("/:id", roomHandler.DeleteListing)
}
