package llm

import (
	"log/slog"
	"os"
	"time"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "ASSISTANT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client based on the ASSISTANT_MODE environment
// variable. With ASSISTANT_MODE=MOCK it returns a MockClient. Without a base
// URL or API key the provider is unconfigured and nil is returned; callers
// must then use their fallback text.
func NewLLMClient(baseURL, apiKey string, timeout time.Duration) LLMClient {
	if os.Getenv(EnvMode) == ModeMock {
		slog.Info("ASSISTANT_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	if baseURL == "" || apiKey == "" {
		slog.Warn("language provider not configured, fallback replies only")
		return nil
	}
	return NewClient(baseURL, apiKey, timeout)
}
