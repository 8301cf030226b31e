package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.LLM.BaseURL = baseURL
	cfg.ApplyDefaults()
	return cfg
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(context.Background(), testConfig("http://localhost:11434"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", b.Name())

	cfg := testConfig("http://localhost:11434")
	cfg.LLM.Provider = "claude"
	_, err = NewBackend(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewGate_ProbeResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models": [{"name": "qwen2.5:7b"}]}`))
	}))
	defer srv.Close()

	g, err := NewGate(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)
	assert.True(t, g.Available())

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	g, err = NewGate(context.Background(), testConfig(down.URL))
	require.NoError(t, err)
	assert.False(t, g.Available())
}
