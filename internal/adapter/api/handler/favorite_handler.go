package handler

import (
	"cassmarket/internal/usecase"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/response"
	"cassmarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) AddToFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)
	articleID := c.Param("articleId")

	if articleID == "" {
		return response.Error(c, errors.Validation("article id is required"))
	}

	link, err := h.favoriteUseCase.AddToFavorites(c.Request().Context(), userID, articleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, link)
}

func (h *FavoriteHandler) RemoveFromFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)
	articleID := c.Param("articleId")

	if articleID == "" {
		return response.Error(c, errors.Validation("article id is required"))
	}

	if err := h.favoriteUseCase.RemoveFromFavorites(c.Request().Context(), userID, articleID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Removed from favorites",
	})
}

func (h *FavoriteHandler) ToggleFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)
	articleID := c.Param("articleId")

	if articleID == "" {
		return response.Error(c, errors.Validation("article id is required"))
	}

	result, err := h.favoriteUseCase.ToggleFavorite(c.Request().Context(), userID, articleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *FavoriteHandler) CheckFavoriteStatus(c echo.Context) error {
	userID := c.Get("uid").(string)
	articleID := c.Param("articleId")

	if articleID == "" {
		return response.Error(c, errors.Validation("article id is required"))
	}

	isFavorite, err := h.favoriteUseCase.IsFavorite(c.Request().Context(), userID, articleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"article_id":  articleID,
		"is_favorite": isFavorite,
	})
}

func (h *FavoriteHandler) GetUserFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)

	pagination := utils.GetPaginationParams(c)

	page, err := h.favoriteUseCase.GetUserFavorites(c.Request().Context(), userID, usecase.FavoritesQuery{
		PageSize: pagination.PageSize,
		Cursor:   pagination.Cursor,
		UseCache: pagination.UseCache,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Links, int64(len(page.Links)), pagination.PageSize, page.NextCursor)
}

func (h *FavoriteHandler) GetFavoritesStats(c echo.Context) error {
	userID := c.Get("uid").(string)

	stats, err := h.favoriteUseCase.GetFavoritesStats(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
