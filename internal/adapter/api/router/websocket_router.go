package router

import (
	"github.com/labstack/echo/v4"

	"toolmart/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts the realtime endpoint. Auth happens inside
// the handler via the token query param.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
