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

	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/factory"
	"github.com/xiaot623/assistant/internal/logging"
	"github.com/xiaot623/assistant/internal/metrics"
	"github.com/xiaot623/assistant/internal/policy"
	"github.com/xiaot623/assistant/internal/registry"
	"github.com/xiaot623/assistant/internal/repository"
	transport "github.com/xiaot623/assistant/internal/transport/http"
	"github.com/xiaot623/assistant/internal/transport/http/toolfactory"
)

func main() {
	// Load configuration
	cfg, err := config.Load(8004)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("tool-factory", cfg.LogLevel)

	logger.Info("starting tool factory",
		"port", cfg.HTTPPort,
		"database", cfg.DatabaseURL,
		"services_root", cfg.ServicesRoot,
		"port_range", fmt.Sprintf("%d-%d", cfg.PortRangeMin, cfg.PortRangeMax),
	)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		logger.Error("failed to initialize policy engine", "error", err)
		os.Exit(1)
	}

	m := metrics.Default()
	reg, err := registry.New(ctx, db, registry.Options{
		Root:          cfg.ServicesRoot,
		PortMin:       cfg.PortRangeMin,
		PortMax:       cfg.PortRangeMax,
		ReservedPorts: cfg.ReservedPorts,
		Policy:        policyEngine,
		Metrics:       m,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to initialize registry", "error", err)
		os.Exit(1)
	}
	pipeline := factory.New(reg, policyEngine, db, factory.LogDeployer{Logger: logger}, cfg.ServiceHost, m, logger)

	e := transport.NewServer(cfg.CORSOrigins)
	toolfactory.NewHandler(pipeline).RegisterRoutes(e)

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

	logger.Info("shutting down tool factory")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("tool factory stopped")
}
