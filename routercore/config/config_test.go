package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"zero max history", func(c *Config) { c.Session.MaxHistory = 0 }, "session.max_history"},
		{"negative llm timeout", func(c *Config) { c.LLM.TimeoutSeconds = -1 }, "llm.timeout_seconds"},
		{"temperature out of range", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"zero search results", func(c *Config) { c.Search.MaxResults = 0 }, "search.max_results"},
		{"bad smtp port", func(c *Config) { c.Email.SMTPPort = 70000 }, "email.smtp_port"},
		{"bad work days", func(c *Config) { c.Calendar.WorkDays = 8 }, "calendar.work_days"},
		{"bad start time", func(c *Config) { c.Calendar.StartTime = "25:99" }, "calendar.start_time"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 20, cfg.Session.MaxHistory)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  http_addr: ":9090"
session:
  max_history: 15
  redis_addr: "localhost:6379"
llm:
  model: "gemini-2.5-flash"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 15, cfg.Session.MaxHistory)
	assert.Equal(t, "localhost:6379", cfg.Session.RedisAddr)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5, cfg.Search.MaxResults)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  max_history: 15\n"), 0o600))

	t.Setenv("SESSION_MAX_HISTORY", "30")
	t.Setenv("LLM_API_KEY", "test-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Session.MaxHistory)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  max_history: -1\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestEnvToKey(t *testing.T) {
	assert.Equal(t, "session.max_history", envToKey("SESSION_MAX_HISTORY"))
	assert.Equal(t, "llm.api_key", envToKey("LLM_API_KEY"))
	assert.Equal(t, "server.http_addr", envToKey("SERVER_HTTP_ADDR"))
	assert.Equal(t, "path", envToKey("PATH"))
}
