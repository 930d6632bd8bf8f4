package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	e := echo.New()
	e.Use(RateLimiter(1, 1))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/items", ok)
	e.GET("/health", ok)

	get := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/items", "192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("/items", "192.0.2.1"))
	assert.Equal(t, http.StatusOK, get("/items", "192.0.2.2"))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get("/health", "192.0.2.1"))
	}
}
