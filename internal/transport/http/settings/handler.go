// Package settings provides the HTTP handlers of the settings service.
package settings

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/assistant/internal/agents"
	"github.com/xiaot623/assistant/internal/domain"
	transport "github.com/xiaot623/assistant/internal/transport/http"
)

// AgentService manages agent configurations.
type AgentService interface {
	Create(ctx context.Context, in agents.Input) (*domain.Agent, error)
	Get(ctx context.Context, id string) (*domain.Agent, error)
	List(ctx context.Context) ([]domain.Agent, error)
	Update(ctx context.Context, id string, in agents.Input) (*domain.Agent, error)
	Delete(ctx context.Context, id string) error
}

// Handler handles HTTP requests.
type Handler struct {
	service AgentService
}

// NewHandler creates a new handler.
func NewHandler(service AgentService) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/agents", h.ListAgents)
	e.POST("/agents", h.CreateAgent)
	e.GET("/agents/:id", h.GetAgent)
	e.PUT("/agents/:id", h.UpdateAgent)
	e.DELETE("/agents/:id", h.DeleteAgent)

	e.GET("/health", h.Health)
}

// ListAgents handles GET /agents.
func (h *Handler) ListAgents(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.service.List(ctx)
	if err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateAgent handles POST /agents.
func (h *Handler) CreateAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var in agents.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	agent, err := h.service.Create(ctx, in)
	if err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusCreated, agent)
}

// GetAgent handles GET /agents/:id.
func (h *Handler) GetAgent(c echo.Context) error {
	ctx := c.Request().Context()

	agent, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

// UpdateAgent handles PUT /agents/:id.
func (h *Handler) UpdateAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var in agents.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	agent, err := h.service.Update(ctx, c.Param("id"), in)
	if err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

// DeleteAgent handles DELETE /agents/:id.
func (h *Handler) DeleteAgent(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.service.Delete(ctx, id); err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("agent '%s' deleted", id),
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "settings",
	})
}
