package router

import (
	"cassmarket/internal/adapter/api/handler"
	"cassmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	userGroup := e.Group("/v1/users")
	userGroup.Use(authMiddleware.Authenticate)

	userGroup.GET("/me", userHandler.GetMe)                    // GET /v1/users/me - Own profile
	userGroup.PUT("/me", userHandler.UpdateProfile)            // PUT /v1/users/me - Create or update profile
	userGroup.PUT("/me/status", userHandler.UpdateOnlineStatus) // PUT /v1/users/me/status - Presence flag
	userGroup.GET("/search", userHandler.SearchUsers)          // GET /v1/users/search?q= - Prefix search
	userGroup.GET("/:id", userHandler.GetUserByID)             // GET /v1/users/:id - Public profile
}
