package factory

import (
	"context"
	"fmt"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm/ollama"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm/openai"
)

// NewBackend 根据配置创建生成后端
func NewBackend(ctx context.Context, cfg *config.Config) (llm.Backend, error) {
	switch cfg.LLM.Provider {
	case "", "ollama":
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("ollama base url is missing")
		}
		return ollama.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, 2*cfg.LLM.Timeout), nil

	case "openai":
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("openai base url is missing")
		}
		return openai.NewClient(ctx, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, 2*cfg.LLM.Timeout)

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

// NewGate 探测后端并创建生成闸门
func NewGate(ctx context.Context, cfg *config.Config) (*llm.Gate, error) {
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	available := llm.ProbeBackend(ctx, backend, 0)
	return llm.NewGate(backend, available, llm.GateConfig{
		MaxInFlight:     cfg.Concurrency.MaxInFlight,
		Timeout:         cfg.LLM.Timeout,
		QPS:             cfg.Concurrency.QPS,
		RPM:             cfg.Concurrency.RPM,
		BreakerFailures: cfg.Breaker.FailureThreshold,
		BreakerTimeout:  cfg.Breaker.OpenTimeout,
	}), nil
}
