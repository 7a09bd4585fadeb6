package router

import (
	"toolmart/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

func SetupDevRouter(e *echo.Echo, environment string) {
	if environment != "development" {
		return
	}
	devTokenHandler := handler.GetDevTokenHandler()

	e.GET("/_dev/token/user", devTokenHandler.GenerateUserToken)
	e.GET("/_dev/token/admin", devTokenHandler.GenerateAdminToken)
	e.GET("/_dev/token", devTokenHandler.GenerateTokenForEmail)
	e.POST("/_dev/decode-token", devTokenHandler.DecodeToken)
}
