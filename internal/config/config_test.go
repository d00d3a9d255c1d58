package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	require.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	require.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterBaseURL)
	require.Equal(t, "https://api.tavily.com", cfg.TavilyBaseURL)
	require.Equal(t, 60*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 100, cfg.DirectMaxTokens)
	require.Equal(t, 10, cfg.AgentMaxTurns)
	require.False(t, cfg.UseParamStore())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("PARAM_PREFIX", "/agent-gateway")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("DIRECT_MAX_TOKENS", "256")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.True(t, cfg.UseParamStore())
	require.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 256, cfg.DirectMaxTokens)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AGENT_MAX_TURNS=4\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("AGENT_MAX_TURNS", "")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("AGENT_MAX_TURNS")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.AgentMaxTurns)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DIRECT_MAX_TOKENS", "0")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "DIRECT_MAX_TOKENS")

	t.Setenv("DIRECT_MAX_TOKENS", "abc")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "parse environment")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GroqBaseURL:       "g",
			OpenRouterBaseURL: "o",
			TavilyBaseURL:     "t",
			UpstreamTimeout:   time.Second,
			DirectMaxTokens:   1,
			AgentMaxTurns:     1,
			LogLevel:          "info",
		}
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.GroqBaseURL = " "
	require.Error(t, c.Validate())

	c = valid()
	c.UpstreamTimeout = 0
	require.Error(t, c.Validate())

	c = valid()
	c.AgentMaxTurns = -1
	require.Error(t, c.Validate())

	c = valid()
	c.LogLevel = "loud"
	require.ErrorContains(t, c.Validate(), "LOG_LEVEL")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, lvl)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("GATEWAY_URL", "")
	os.Unsetenv("GATEWAY_URL")
	t.Setenv("AGENT_SYSTEM_PROMPT", "")
	os.Unsetenv("AGENT_SYSTEM_PROMPT")

	cfg, err := LoadClient(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999/chat", cfg.GatewayURL)
	require.Equal(t, "Act as an AI chatbot who is smart and friendly", cfg.SystemPrompt)

	t.Setenv("GATEWAY_URL", "http://gateway.internal/chat")
	cfg, err = LoadClient(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "http://gateway.internal/chat", cfg.GatewayURL)
}
