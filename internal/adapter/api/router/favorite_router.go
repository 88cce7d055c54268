package router

import (
	"cassmarket/internal/adapter/api/handler"
	"cassmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupFavoriteRouter(e *echo.Echo, favoriteHandler *handler.FavoriteHandler, authMiddleware *middleware.AuthMiddleware) {
	// All favorites endpoints require authentication
	favoritesGroup := e.Group("/v1/favorites")
	favoritesGroup.Use(authMiddleware.Authenticate)

	favoritesGroup.POST("/:articleId", favoriteHandler.AddToFavorites)          // POST /v1/favorites/:articleId - Add to favorites
	favoritesGroup.DELETE("/:articleId", favoriteHandler.RemoveFromFavorites)   // DELETE /v1/favorites/:articleId - Remove from favorites
	favoritesGroup.PUT("/:articleId/toggle", favoriteHandler.ToggleFavorite)    // PUT /v1/favorites/:articleId/toggle - Toggle membership
	favoritesGroup.GET("/:articleId/status", favoriteHandler.CheckFavoriteStatus) // GET /v1/favorites/:articleId/status - Check membership
	favoritesGroup.GET("", favoriteHandler.GetUserFavorites)                    // GET /v1/favorites - List user's favorites
	favoritesGroup.GET("/stats", favoriteHandler.GetFavoritesStats)             // GET /v1/favorites/stats - Totals
}
