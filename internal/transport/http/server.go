// Package http provides the echo server setup and error mapping shared by
// the assistant services.
package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiaot623/assistant/internal/domain"
)

// NewServer creates an echo server with the shared middleware and the
// /metrics endpoint. An empty origin list allows any origin.
func NewServer(corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: corsOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// ErrorStatus maps domain errors onto HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrImmutable):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": "..."} with its mapped status.
func Error(c echo.Context, err error) error {
	return c.JSON(ErrorStatus(err), map[string]string{"error": err.Error()})
}
