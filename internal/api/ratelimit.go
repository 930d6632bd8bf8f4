package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimiter throttles each client IP to limit requests per second with the
// given burst. Health checks are never throttled.
func RateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	tooMany := func(c echo.Context) error {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Warn().Err(err).Msg("Error identifying client for rate limit")
			return tooMany(c)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn().Msgf("Rate limit exceeded for %s", identifier)
			return tooMany(c)
		},
	})
}
