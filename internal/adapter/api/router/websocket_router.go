package router

import (
	"github.com/labstack/echo/v4"

	"cassmarket/internal/adapter/api/handler"
	"cassmarket/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up WebSocket routes. Browsers cannot set an
// Authorization header on the upgrade request, so the token rides in the
// query string.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/ws", wsHandler.HandleWebSocket, authMiddleware.AuthenticateQueryToken)
}
