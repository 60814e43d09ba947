// Package calendar provides the HTTP handlers of the calendar service.
package calendar

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/assistant/internal/calendar"
	"github.com/xiaot623/assistant/internal/domain"
	transport "github.com/xiaot623/assistant/internal/transport/http"
)

// Handler handles HTTP requests.
type Handler struct {
	store calendar.Store
}

// NewHandler creates a new handler.
func NewHandler(store calendar.Store) *Handler {
	return &Handler{
		store: store,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/all", h.list(domain.ScopeAll))
	e.GET("/personal", h.list(domain.ScopePersonal))
	e.GET("/professional", h.list(domain.ScopeProfessional))

	e.POST("/create", h.create(domain.ScopeAll))
	e.POST("/personal", h.create(domain.ScopePersonal))
	e.POST("/professional", h.create(domain.ScopeProfessional))

	e.GET("/health", h.Health)
}

// list handles GET /{scope}.
func (h *Handler) list(scope domain.CalendarScope) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		events, err := h.store.List(ctx, scope)
		if err != nil {
			return transport.Error(c, err)
		}
		return c.JSON(http.StatusOK, events)
	}
}

// create handles POST /create, /personal and /professional.
func (h *Handler) create(scope domain.CalendarScope) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var event domain.Event
		if err := c.Bind(&event); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		created, err := h.store.Create(ctx, event, scope)
		if err != nil {
			return transport.Error(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "calendar",
	})
}
