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

	"github.com/xiaot623/assistant/internal/calendar"
	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/logging"
	transport "github.com/xiaot623/assistant/internal/transport/http"
	calendarhttp "github.com/xiaot623/assistant/internal/transport/http/calendar"
)

func main() {
	// Load configuration
	cfg, err := config.Load(8002)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("calendar", cfg.LogLevel)

	store := calendar.NewMemoryStore(calendar.SeedEvents())
	logger.Info("starting calendar service", "port", cfg.HTTPPort)

	e := transport.NewServer(cfg.CORSOrigins)
	calendarhttp.NewHandler(store).RegisterRoutes(e)

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

	logger.Info("shutting down calendar service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("calendar service stopped")
}
