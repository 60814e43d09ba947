package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/assistant/internal/adapter/orchestrator"
	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/gateway"
	"github.com/xiaot623/assistant/internal/logging"
	transport "github.com/xiaot623/assistant/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load(8000)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("gateway", cfg.LogLevel)

	logger.Info("starting gateway",
		"port", cfg.HTTPPort,
		"orchestrator_url", cfg.OrchestratorURL,
		"cors_origins", cfg.CORSOrigins,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize hub
	hub := gateway.NewHub(logger)
	go hub.Run(ctx)

	// The orchestrator may wait on the calendar, the settings service and the provider.
	orchClient := orchestrator.NewClient(cfg.OrchestratorURL, cfg.LLMTimeout+2*cfg.DownstreamTimeout)

	e := transport.NewServer(cfg.CORSOrigins)
	if err := gateway.NewHandler(cfg, orchClient, hub, logger).RegisterRoutes(e); err != nil {
		logger.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("gateway stopped")
}
