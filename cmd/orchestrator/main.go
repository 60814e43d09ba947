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

	calendarclient "github.com/xiaot623/assistant/internal/adapter/calendar"
	"github.com/xiaot623/assistant/internal/adapter/llm"
	settingsclient "github.com/xiaot623/assistant/internal/adapter/settings"
	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/dispatch"
	"github.com/xiaot623/assistant/internal/logging"
	"github.com/xiaot623/assistant/internal/metrics"
	transport "github.com/xiaot623/assistant/internal/transport/http"
	"github.com/xiaot623/assistant/internal/transport/http/orchestrator"
)

func main() {
	// Load configuration
	cfg, err := config.Load(8001)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("orchestrator", cfg.LogLevel)

	logger.Info("starting orchestrator",
		"port", cfg.HTTPPort,
		"calendar_url", cfg.CalendarURL,
		"settings_url", cfg.SettingsURL,
		"llm_base_url", cfg.LLMBaseURL,
	)

	// Language provider; nil when unconfigured so every branch uses its fallback
	var generator dispatch.TextGenerator
	if client := llm.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout); client != nil {
		generator = llm.NewGenerator(client, cfg.LLMModel)
	}

	dispatcher, err := dispatch.New(dispatch.Options{
		Calendar:            calendarclient.NewClient(cfg.CalendarURL, cfg.DownstreamTimeout),
		Agents:              settingsclient.NewClient(cfg.SettingsURL, cfg.DownstreamTimeout),
		LLM:                 generator,
		GeneralAgentID:      cfg.GeneralAgentID,
		PersonalAgentID:     cfg.PersonalAgentID,
		ProfessionalAgentID: cfg.ProfessionalAgentID,
		DownstreamTimeout:   cfg.DownstreamTimeout,
		LLMTimeout:          cfg.LLMTimeout,
		PromptCacheTTL:      cfg.PromptCacheTTL,
		Metrics:             metrics.Default(),
		Logger:              logger,
	})
	if err != nil {
		logger.Error("failed to initialize dispatcher", "error", err)
		os.Exit(1)
	}
	defer dispatcher.Close()

	e := transport.NewServer(cfg.CORSOrigins)
	orchestrator.NewHandler(dispatcher).RegisterRoutes(e)

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

	logger.Info("shutting down orchestrator")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("orchestrator stopped")
}
