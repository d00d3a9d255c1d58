package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the gateway settings. Values come from the environment, optionally
// seeded from a .env file in the working directory.
type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:9999"`
	ParamPrefix string `env:"PARAM_PREFIX"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	GroqBaseURL       string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	TavilyBaseURL     string `env:"TAVILY_BASE_URL" envDefault:"https://api.tavily.com"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`
	DirectMaxTokens int           `env:"DIRECT_MAX_TOKENS" envDefault:"100"`
	AgentMaxTurns   int           `env:"AGENT_MAX_TURNS" envDefault:"10"`
}

// Secret names used when keys come from the environment.
const (
	GroqKeyEnv       = "GROQ_API_KEY"
	OpenRouterKeyEnv = "OPENROUTER_API_KEY"
	TavilyKeyEnv     = "TAVILY_API_KEY"
)

// Secret names used under PARAM_PREFIX when keys come from SSM.
const (
	GroqKeyParam       = "groq-api-key"
	OpenRouterKeyParam = "openrouter-api-key"
	TavilyKeyParam     = "tavily-api-key"
)

func (c *Config) Validate() error {
	if strings.TrimSpace(c.GroqBaseURL) == "" {
		return errors.New("GROQ_BASE_URL must not be empty")
	}
	if strings.TrimSpace(c.OpenRouterBaseURL) == "" {
		return errors.New("OPENROUTER_BASE_URL must not be empty")
	}
	if strings.TrimSpace(c.TavilyBaseURL) == "" {
		return errors.New("TAVILY_BASE_URL must not be empty")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	if c.DirectMaxTokens <= 0 {
		return errors.New("DIRECT_MAX_TOKENS must be positive")
	}
	if c.AgentMaxTurns <= 0 {
		return errors.New("AGENT_MAX_TURNS must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// UseParamStore reports whether API keys are read from SSM.
func (c *Config) UseParamStore() bool {
	return strings.TrimSpace(c.ParamPrefix) != ""
}

// Load reads an optional .env file and parses the environment into a validated Config.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env is normal in Lambda and CI.
		_ = godotenv.Load(f)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", s)
	}
}

// ClientConfig holds the interactive client settings.
type ClientConfig struct {
	GatewayURL   string `env:"GATEWAY_URL" envDefault:"http://127.0.0.1:9999/chat"`
	SystemPrompt string `env:"AGENT_SYSTEM_PROMPT" envDefault:"Act as an AI chatbot who is smart and friendly"`
}

// LoadClient reads an optional .env file and parses the client settings.
func LoadClient(envFiles ...string) (*ClientConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return nil, errors.New("config: GATEWAY_URL must not be empty")
	}
	return cfg, nil
}
