package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents cursor pagination parameters
type PaginationParams struct {
	PageSize int
	Cursor   string
	UseCache bool
}

// GetPaginationParams extracts pagination parameters from request
func GetPaginationParams(c echo.Context) PaginationParams {
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20 // Default page size
	}

	useCache := true
	if c.QueryParam("cache") == "false" {
		useCache = false
	}

	return PaginationParams{
		PageSize: pageSize,
		Cursor:   c.QueryParam("cursor"),
		UseCache: useCache,
	}
}
