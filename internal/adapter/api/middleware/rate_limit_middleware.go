package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cassmarket/internal/infrastructure/ratelimit"
)

// RateLimit guards an endpoint group with a per-IP fixed-window limiter.
// The per-sender message quota lives in the chat usecase; this one only
// shields the API surface from bursts.
func RateLimit(limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryAfter := limiter.Allow(c.RealIP())
			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(retryAfter / time.Second),
				})
			}

			return next(c)
		}
	}
}
