package router

import (
	"toolmart/internal/adapter/api/handler"
	"toolmart/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupCheckoutRouter(e *echo.Echo, checkoutHandler *handler.CheckoutHandler, authMiddleware *middleware.AuthMiddleware) {
	payments := e.Group("/v1/payments")
	payments.Use(authMiddleware.Authenticate)
	payments.POST("/account", checkoutHandler.CreateSellerAccount)
	payments.GET("/account/status", checkoutHandler.GetAccountStatus)
	payments.POST("/checkout", checkoutHandler.CreateCheckoutSession)

	// The webhook authenticates via signature, not a bearer token.
	e.POST("/v1/payments/webhook", checkoutHandler.StripeWebhook, middleware.WebhookRateLimit())
}
