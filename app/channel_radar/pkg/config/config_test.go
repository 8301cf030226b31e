package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Generation.Retries)
	assert.Equal(t, time.Second, cfg.Generation.RetryDelay)
	assert.Equal(t, 1.0, cfg.Generation.Backoff)
	assert.Equal(t, 1, cfg.Concurrency.MaxInFlight)
	assert.Equal(t, "sqlite", cfg.DB.Path)
	assert.Equal(t, "yt_insights.db", cfg.DB.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	path := writeYAML(t, `
server:
  port: 9000
  cors_origins: ["https://a.example"]
llm:
  model: llama3
generation:
  retries: 0
  retry_delay: 250ms
db:
  url: badger://
`)
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://b.example,https://c.example")
	t.Setenv("LLM_MAX_IN_FLIGHT", "3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Generation.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Generation.RetryDelay)
	assert.Equal(t, 3, cfg.Concurrency.MaxInFlight)
	assert.Equal(t, "badger://", cfg.DB.URL)
}

func TestLoadConfig_ProviderNeutralEnv(t *testing.T) {
	path := writeYAML(t, `
llm:
  provider: openai
  base_url: https://yaml.example/v1
`)
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "qwen2.5:7b")
	t.Setenv("LLM_BASE_URL", "https://api.example/v1")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "qwen2.5:7b", cfg.LLM.Model)

	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeYAML(t, `
llm:
  provider: bard
generation:
  retries: -1
  backoff: 0.5
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
	assert.Contains(t, err.Error(), "retries")
	assert.Contains(t, err.Error(), "backoff")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"sqlitecloud://host:8860/db?apikey=secret", "sqlitecloud://host:8860/db?apikey=***masked***"},
		{"postgres://user:pass@db:5432/app", "postgres://user:***masked***@db:5432/app"},
		{"postgres://db:5432/app", "postgres://db:5432/app"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MaskDSN(c.in), c.in)
	}
}

func TestSummary(t *testing.T) {
	cfg := &Config{
		DB:  DBConfig{URL: "postgres://u:p@h/db"},
		LLM: LLMConfig{APIKey: "sk-123", Model: "m"},
	}
	cfg.ApplyDefaults()
	s := cfg.Summary()

	assert.Equal(t, true, s["is_cloud_database"])
	assert.Equal(t, "postgres://u:***masked***@h/db", s["database_url"])
	assert.Equal(t, "***masked***", s["llm_api_key"])
	assert.Equal(t, "m", s["ollama_model"])
	for _, v := range s {
		if str, ok := v.(string); ok {
			assert.NotContains(t, str, "sk-123")
		}
	}
}
