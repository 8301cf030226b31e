package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
)

// ErrBackendUnavailable 启动探测未通过
var ErrBackendUnavailable = errors.New("generation backend unavailable")

// Backend 定义通用的文本生成接口，不保证输出为 JSON
type Backend interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
	// Probe 检查后端与模型是否可用
	Probe(ctx context.Context) error
	Name() string
}

// GenerationRequest 单次生成请求
type GenerationRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Validate 校验生成参数
func (r *GenerationRequest) Validate() error {
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature out of range [0,2]: %v", r.Temperature)
	}
	return nil
}

// ProbeBackend 启动时探测一次后端，结果在进程生命周期内不再刷新
func ProbeBackend(ctx context.Context, b Backend, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := b.Probe(ctx); err != nil {
		logger.Log.Warnf("生成后端 [%s] 不可用，所有洞察将使用模板兜底: %v", b.Name(), err)
		metrics.SetBackendAvailable(false)
		return false
	}
	logger.Log.Infof("生成后端 [%s] 可用", b.Name())
	metrics.SetBackendAvailable(true)
	return true
}
