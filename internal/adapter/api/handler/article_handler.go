package handler

import (
	"strconv"

	"cassmarket/internal/usecase"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/response"
	"cassmarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

type ArticleHandler struct {
	articleUseCase *usecase.ArticleUseCase
}

func NewArticleHandler(articleUseCase *usecase.ArticleUseCase) *ArticleHandler {
	return &ArticleHandler{
		articleUseCase: articleUseCase,
	}
}

type deletePhotoRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (h *ArticleHandler) CreateArticle(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	var input usecase.ArticleInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	article, err := h.articleUseCase.CreateArticle(c.Request().Context(), sellerID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, article)
}

func (h *ArticleHandler) GetArticle(c echo.Context) error {
	article, err := h.articleUseCase.GetArticle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, article)
}

func (h *ArticleHandler) UpdateArticle(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	var input usecase.ArticleInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	article, err := h.articleUseCase.UpdateArticle(c.Request().Context(), sellerID, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, article)
}

func (h *ArticleHandler) DeleteArticle(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	if err := h.articleUseCase.DeleteArticle(c.Request().Context(), sellerID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Article deleted successfully",
	})
}

func (h *ArticleHandler) ListMyArticles(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	articles, total, err := h.articleUseCase.ListBySeller(c.Request().Context(), sellerID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, articles, total, limit, "")
}

func (h *ArticleHandler) Browse(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	articles, nextCursor, err := h.articleUseCase.Browse(c.Request().Context(), params.PageSize, params.Cursor)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, articles, int64(len(articles)), params.PageSize, nextCursor)
}

func (h *ArticleHandler) UploadPhoto(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.Error(c, errors.BadRequest("Photo file is required", err))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.articleUseCase.UploadPhoto(c.Request().Context(), sellerID, c.Param("id"), src, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"url": url,
	})
}

func (h *ArticleHandler) DeletePhoto(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	var req deletePhotoRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.articleUseCase.DeletePhoto(c.Request().Context(), sellerID, c.Param("id"), req.URL); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Photo removed",
	})
}
