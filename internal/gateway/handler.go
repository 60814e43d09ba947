// Package gateway is the single entry point for the frontend: it forwards
// chat to the orchestrator, proxies the agent, calendar and service APIs,
// and serves WebSocket chat.
package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/domain"
)

// Handler handles HTTP requests.
type Handler struct {
	cfg       *config.Config
	processor Processor
	hub       *Hub
	ws        *WSServer
	logger    *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(cfg *config.Config, processor Processor, hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		processor: processor,
		hub:       hub,
		ws:        NewWSServer(cfg, hub, processor, logger),
		logger:    logger,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) error {
	e.POST("/chat", h.Chat)
	e.GET("/ws", h.ws.HandleWebSocket)
	e.GET("/health", h.Health)

	upstreams := []struct {
		name    string
		rawURL  string
		paths   []string
		rewrite map[string]string
	}{
		{"settings", h.cfg.SettingsURL, []string{"/agents", "/agents/*"}, nil},
		{"calendar", h.cfg.CalendarURL, []string{"/calendar/*"}, map[string]string{"/calendar/*": "/$1"}},
		{"tool factory", h.cfg.ToolFactoryURL, []string{"/services", "/services/*", "/create-service"}, nil},
	}
	for _, u := range upstreams {
		mw, err := h.proxy(u.name, u.rawURL, u.rewrite)
		if err != nil {
			return err
		}
		for _, p := range u.paths {
			e.Any(p, echo.NotFoundHandler, mw)
		}
	}
	return nil
}

// proxy builds a reverse proxy to one upstream. An unreachable upstream
// answers 503.
func (h *Handler) proxy(name, rawURL string, rewrite map[string]string) (echo.MiddlewareFunc, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("invalid %s url %q", name, rawURL)
	}
	return middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{Name: name, URL: target}}),
		Rewrite:  rewrite,
		ErrorHandler: func(c echo.Context, err error) error {
			h.logger.Warn("upstream unavailable", "upstream", name, "path", c.Request().URL.Path, "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": name + " service unavailable",
			})
		},
	}), nil
}

// Chat handles POST /chat.
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var msg domain.Message
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.processor.Process(ctx, &msg)
	if err != nil {
		h.logger.WarnContext(ctx, "orchestrator call failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "orchestrator unavailable"})
	}
	return c.JSON(http.StatusOK, result)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "gateway",
		"connections": h.hub.ConnectionCount(),
		"sessions":    h.hub.SessionCount(),
	})
}
