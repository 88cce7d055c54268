package router

import (
	"cassmarket/internal/adapter/api/handler"
	"cassmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupArticleRouter(e *echo.Echo, articleHandler *handler.ArticleHandler, authMiddleware *middleware.AuthMiddleware) {
	// Public browsing
	e.GET("/v1/articles", articleHandler.Browse)        // GET /v1/articles - Newest first, cursor paginated
	e.GET("/v1/articles/:id", articleHandler.GetArticle) // GET /v1/articles/:id - Single article

	// Seller-owned operations
	articleGroup := e.Group("/v1/articles")
	articleGroup.Use(authMiddleware.Authenticate)

	articleGroup.POST("", articleHandler.CreateArticle)               // POST /v1/articles - Publish
	articleGroup.PUT("/:id", articleHandler.UpdateArticle)            // PUT /v1/articles/:id - Edit own article
	articleGroup.DELETE("/:id", articleHandler.DeleteArticle)         // DELETE /v1/articles/:id - Remove own article
	articleGroup.POST("/:id/photos", articleHandler.UploadPhoto)      // POST /v1/articles/:id/photos - Attach photo
	articleGroup.DELETE("/:id/photos", articleHandler.DeletePhoto)    // DELETE /v1/articles/:id/photos - Detach photo
	articleGroup.GET("/mine/list", articleHandler.ListMyArticles)     // GET /v1/articles/mine/list - Own listings
}
