package router

import (
	"cassmarket/internal/adapter/api/handler"
	"cassmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Favorite  *handler.FavoriteHandler
	Chat      *handler.ChatHandler
	User      *handler.UserHandler
	Article   *handler.ArticleHandler
	WebSocket *handler.WebSocketHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupFavoriteRouter(e, h.Favorite, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupArticleRouter(e, h.Article, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
	SetupHealthRouter(e)
}
