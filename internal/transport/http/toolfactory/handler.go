// Package toolfactory provides the HTTP handlers of the tool factory.
package toolfactory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/assistant/internal/domain"
	transport "github.com/xiaot623/assistant/internal/transport/http"
)

// Pipeline is the service-generation pipeline behind the handlers.
type Pipeline interface {
	CreateService(ctx context.Context, req *domain.ServiceGenerationRequest) (*domain.CreateServiceResponse, error)
	ListServices(ctx context.Context) ([]domain.ServiceRecord, error)
	RemoveService(ctx context.Context, idOrName string) error
	ReportStatus(ctx context.Context, idOrName string, status domain.ServiceStatus) (*domain.ServiceRecord, error)
	EndpointURLs(record *domain.ServiceRecord) []string
}

// Handler handles HTTP requests.
type Handler struct {
	pipeline Pipeline
}

// NewHandler creates a new handler.
func NewHandler(pipeline Pipeline) *Handler {
	return &Handler{
		pipeline: pipeline,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/create-service", h.CreateService)
	e.GET("/services", h.ListServices)
	e.DELETE("/services/:name", h.DeleteService)
	e.PUT("/services/:name/status", h.UpdateStatus)

	e.GET("/health", h.Health)
}

// StatusRequest is the body of PUT /services/:name/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// CreateService handles POST /create-service.
func (h *Handler) CreateService(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ServiceGenerationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.pipeline.CreateService(ctx, &req)
	if err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListServices handles GET /services.
func (h *Handler) ListServices(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := h.pipeline.ListServices(ctx)
	if err != nil {
		return transport.Error(c, err)
	}
	if records == nil {
		records = []domain.ServiceRecord{}
	}
	for i := range records {
		records[i].Endpoints = h.pipeline.EndpointURLs(&records[i])
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"services": records})
}

// DeleteService handles DELETE /services/:name.
func (h *Handler) DeleteService(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	if err := h.pipeline.RemoveService(ctx, name); err != nil {
		return transport.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("service '%s' removed", name),
	})
}

// UpdateStatus handles PUT /services/:name/status.
func (h *Handler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	record, err := h.pipeline.ReportStatus(ctx, c.Param("name"), domain.ServiceStatus(req.Status))
	if err != nil {
		return transport.Error(c, err)
	}
	record.Endpoints = h.pipeline.EndpointURLs(record)
	return c.JSON(http.StatusOK, record)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tool-factory",
	})
}
