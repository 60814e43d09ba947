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

	"github.com/xiaot623/assistant/internal/adapter/toolfactory"
	"github.com/xiaot623/assistant/internal/agents"
	"github.com/xiaot623/assistant/internal/binder"
	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/logging"
	"github.com/xiaot623/assistant/internal/repository"
	transport "github.com/xiaot623/assistant/internal/transport/http"
	"github.com/xiaot623/assistant/internal/transport/http/settings"
)

func main() {
	// Load configuration
	cfg, err := config.Load(8003)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("settings", cfg.LogLevel)

	logger.Info("starting settings service",
		"port", cfg.HTTPPort,
		"database", cfg.DatabaseURL,
		"tool_factory_url", cfg.ToolFactoryURL,
	)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Service generation can take a while; the binder waits for it.
	factoryClient := toolfactory.NewClient(cfg.ToolFactoryURL, 6*cfg.DownstreamTimeout)
	svc := agents.New(db, binder.New(factoryClient, db, logger), logger)

	e := transport.NewServer(cfg.CORSOrigins)
	settings.NewHandler(svc).RegisterRoutes(e)

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

	logger.Info("shutting down settings service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("settings service stopped")
}
