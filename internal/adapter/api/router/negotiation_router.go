package router

import (
	"toolmart/internal/adapter/api/handler"
	"toolmart/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupNegotiationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	negotiationHandler := handler.GetNegotiationHandler()

	offers := e.Group("/v1/offers")
	offers.Use(authMiddleware.Authenticate)
	offers.POST("", negotiationHandler.SubmitOffer)
	offers.POST("/:id/respond", negotiationHandler.RespondToOffer)
	offers.GET("", negotiationHandler.ListMyOffers)
	offers.GET("/:id", negotiationHandler.GetOffer)
}
