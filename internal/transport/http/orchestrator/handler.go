// Package orchestrator provides the HTTP handlers of the orchestrator.
package orchestrator

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/intent"
)

// Dispatcher answers a classified message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message) domain.DispatchResult
}

// Handler handles HTTP requests.
type Handler struct {
	dispatcher Dispatcher
}

// NewHandler creates a new handler.
func NewHandler(dispatcher Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/process", h.Process)
	e.GET("/intents", h.Intents)
	e.GET("/health", h.Health)
}

// Process handles POST /process.
// The dispatcher never fails; only a malformed body is rejected.
func (h *Handler) Process(c echo.Context) error {
	ctx := c.Request().Context()

	var msg domain.Message
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	return c.JSON(http.StatusOK, h.dispatcher.Dispatch(ctx, msg))
}

// Intents handles GET /intents.
func (h *Handler) Intents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules":   intent.Rules(),
		"default": domain.CategoryGeneralKnowledge,
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "orchestrator",
	})
}
