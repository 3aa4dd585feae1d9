package router

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/adapter/api/handler"
	"unimarket/internal/adapter/api/middleware"
)

func SetupExchangeRouter(e *echo.Echo, exchangeHandler *handler.ExchangeHandler, authMiddleware *middleware.AuthMiddleware) {
	// Anyone signed in can browse; the board is not public.
	offers := e.Group("/v1/offers")
	offers.Use(authMiddleware.Authenticate)

	offers.GET("", exchangeHandler.ListOffers)
	offers.POST("", exchangeHandler.CreateOffer)
	offers.GET("/mine", exchangeHandler.MyOffers)
	offers.PATCH("/:id/status", exchangeHandler.UpdateOfferStatus)
	offers.DELETE("/:id", exchangeHandler.DeleteOffer)
}
