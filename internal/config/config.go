// Package config provides configuration for the assistant services.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the optional YAML file applied before the environment.
const EnvConfigFile = "ASSISTANT_CONFIG"

// Config holds the configuration shared by every assistant binary.
// Each binary only reads the sections it needs.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Collaborator URLs
	OrchestratorURL string `yaml:"orchestrator_url"`
	CalendarURL     string `yaml:"calendar_url"`
	SettingsURL     string `yaml:"settings_url"`
	ToolFactoryURL  string `yaml:"tool_factory_url"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Language provider (OpenAI-compatible)
	LLMBaseURL string `yaml:"llm_base_url"`
	LLMAPIKey  string `yaml:"llm_api_key"`
	LLMModel   string `yaml:"llm_model"`

	// Default agents consulted by the dispatcher
	GeneralAgentID      string `yaml:"general_agent_id"`
	PersonalAgentID     string `yaml:"personal_agent_id"`
	ProfessionalAgentID string `yaml:"professional_agent_id"`

	// Tool factory
	ServicesRoot  string `yaml:"services_root"`
	ServiceHost   string `yaml:"service_host"`
	PortRangeMin  int    `yaml:"port_range_min"`
	PortRangeMax  int    `yaml:"port_range_max"`
	ReservedPorts []int  `yaml:"reserved_ports"`

	// Gateway
	CORSOrigins    []string      `yaml:"cors_origins"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size"`

	// Timeouts
	DownstreamTimeout time.Duration `yaml:"downstream_timeout"`
	LLMTimeout        time.Duration `yaml:"llm_timeout"`
	PromptCacheTTL    time.Duration `yaml:"prompt_cache_ttl"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is overridden.
// The default HTTP port is supplied by each binary.
func Defaults(httpPort int) *Config {
	return &Config{
		HTTPPort:            httpPort,
		OrchestratorURL:     "http://localhost:8001",
		CalendarURL:         "http://localhost:8002",
		SettingsURL:         "http://localhost:8003",
		ToolFactoryURL:      "http://localhost:8004",
		DatabaseURL:         "file:assistant.db?cache=shared&mode=rwc",
		LLMModel:            "gpt-4o-mini",
		GeneralAgentID:      "general-assistant",
		PersonalAgentID:     "personal-calendar",
		ProfessionalAgentID: "professional-calendar",
		ServicesRoot:        "/tmp/generated-services",
		ServiceHost:         "localhost",
		PortRangeMin:        8000,
		PortRangeMax:        8999,
		ReservedPorts:       []int{8000, 8001, 8002, 8003, 8004},
		CORSOrigins:         []string{"http://localhost:3000"},
		PingInterval:        30 * time.Second,
		WriteTimeout:        10 * time.Second,
		ReadTimeout:         60 * time.Second,
		MaxMessageSize:      65536,
		DownstreamTimeout:   5 * time.Second,
		LLMTimeout:          20 * time.Second,
		PromptCacheTTL:      30 * time.Second,
		LogLevel:            "info",
	}
}

// Load returns the configuration using the hierarchy defaults < YAML < ENV.
// The YAML file named by ASSISTANT_CONFIG is optional.
func Load(httpPort int) (*Config, error) {
	cfg := Defaults(httpPort)

	if err := loadYAML(cfg, os.Getenv(EnvConfigFile)); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTPPort)
	}
	if c.PortRangeMin <= 0 || c.PortRangeMax > 65535 || c.PortRangeMin > c.PortRangeMax {
		return fmt.Errorf("invalid service port range %d-%d", c.PortRangeMin, c.PortRangeMax)
	}
	if c.DownstreamTimeout <= 0 {
		return errors.New("downstream timeout must be positive")
	}
	return nil
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.OrchestratorURL = getEnv("ORCHESTRATOR_URL", cfg.OrchestratorURL)
	cfg.CalendarURL = getEnv("CALENDAR_URL", cfg.CalendarURL)
	cfg.SettingsURL = getEnv("SETTINGS_URL", cfg.SettingsURL)
	cfg.ToolFactoryURL = getEnv("TOOL_FACTORY_URL", cfg.ToolFactoryURL)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", cfg.LLMAPIKey))
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.GeneralAgentID = getEnv("GENERAL_AGENT_ID", cfg.GeneralAgentID)
	cfg.PersonalAgentID = getEnv("PERSONAL_AGENT_ID", cfg.PersonalAgentID)
	cfg.ProfessionalAgentID = getEnv("PROFESSIONAL_AGENT_ID", cfg.ProfessionalAgentID)
	cfg.ServicesRoot = getEnv("SERVICES_ROOT", cfg.ServicesRoot)
	cfg.ServiceHost = getEnv("SERVICE_HOST", cfg.ServiceHost)
	cfg.PortRangeMin = getEnvInt("SERVICE_PORT_MIN", cfg.PortRangeMin)
	cfg.PortRangeMax = getEnvInt("SERVICE_PORT_MAX", cfg.PortRangeMax)
	cfg.ReservedPorts = getEnvInts("RESERVED_PORTS", cfg.ReservedPorts)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.PingInterval = getEnvMillis("WS_PING_INTERVAL_MS", cfg.PingInterval)
	cfg.WriteTimeout = getEnvMillis("WS_WRITE_TIMEOUT_MS", cfg.WriteTimeout)
	cfg.ReadTimeout = getEnvMillis("WS_READ_TIMEOUT_MS", cfg.ReadTimeout)
	cfg.MaxMessageSize = int64(getEnvInt("WS_MAX_MESSAGE_SIZE", int(cfg.MaxMessageSize)))
	cfg.DownstreamTimeout = getEnvMillis("DOWNSTREAM_TIMEOUT_MS", cfg.DownstreamTimeout)
	cfg.LLMTimeout = getEnvMillis("LLM_TIMEOUT_MS", cfg.LLMTimeout)
	cfg.PromptCacheTTL = getEnvMillis("PROMPT_CACHE_TTL_MS", cfg.PromptCacheTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvMillis(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInts(key string, defaultVal []int) []int {
	parts := getEnvList(key, nil)
	if parts == nil {
		return defaultVal
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return defaultVal
		}
		out = append(out, n)
	}
	return out
}
