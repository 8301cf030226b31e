package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
)

// GateConfig 生成闸门配置
type GateConfig struct {
	// MaxInFlight 同时进行的生成调用上限，默认 1
	MaxInFlight int
	// Timeout 覆盖排队与调用的总时长，默认 60s
	Timeout time.Duration
	QPS     int
	RPM     int
	// BreakerFailures 连续失败多少次后熔断，0 表示不启用
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Gate 串行化访问生成后端，超时视为“没有响应”而不是错误
type Gate struct {
	backend   Backend
	available bool
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[string]
	timeout   time.Duration
}

// NewGate 创建生成闸门。available 来自启动探测，为 false 时所有调用直接返回空
func NewGate(backend Backend, available bool, cfg GateConfig) *Gate {
	if cfg.MaxInFlight < 1 {
		cfg.MaxInFlight = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	g := &Gate{
		backend:   backend,
		available: available,
		sem:       semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		timeout:   cfg.Timeout,
	}

	// 初始化限流器
	switch {
	case cfg.RPM > 0:
		burst := cfg.QPS
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
	case cfg.QPS > 0:
		g.limiter = rate.NewLimiter(rate.Limit(cfg.QPS), cfg.QPS)
	}

	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "llm-" + backend.Name(),
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Log.Warnf("熔断器 [%s] 状态变化: %s -> %s", name, from, to)
			},
		})
	}
	return g
}

// Available 启动探测结果
func (g *Gate) Available() bool {
	return g.available
}

// BackendName 后端名称
func (g *Gate) BackendName() string {
	return g.backend.Name()
}

// Generate 获取执行槽位后调用一次后端。超时、后端错误、熔断均返回 ("", nil)，
// 只有调用方 ctx 被取消时返回 ctx.Err()
func (g *Gate) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if !g.available {
		metrics.GenerationRequests.WithLabelValues("unavailable").Inc()
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		metrics.GenerationRequests.WithLabelValues("canceled").Inc()
		return "", err
	}

	req := &GenerationRequest{Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature}
	if err := req.Validate(); err != nil {
		logger.Log.Errorf("生成参数非法: %v", err)
		metrics.GenerationRequests.WithLabelValues("error").Inc()
		return "", nil
	}

	start := time.Now()
	defer func() {
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sem.Acquire(callCtx, 1); err != nil {
		return g.noResponse(ctx, err)
	}
	defer g.sem.Release(1)

	metrics.GenerationInFlight.Inc()
	defer metrics.GenerationInFlight.Dec()

	if g.limiter != nil {
		if err := g.limiter.Wait(callCtx); err != nil {
			return g.noResponse(ctx, err)
		}
	}

	text, err := g.call(callCtx, req)
	if err != nil {
		return g.noResponse(ctx, err)
	}
	metrics.GenerationRequests.WithLabelValues("ok").Inc()
	return text, nil
}

func (g *Gate) call(ctx context.Context, req *GenerationRequest) (string, error) {
	if g.breaker == nil {
		return g.backend.Generate(ctx, req)
	}
	return g.breaker.Execute(func() (string, error) {
		return g.backend.Generate(ctx, req)
	})
}

// noResponse 把失败折算为“没有响应”，调用方取消时透传
func (g *Gate) noResponse(parent context.Context, err error) (string, error) {
	if perr := parent.Err(); perr != nil {
		metrics.GenerationRequests.WithLabelValues("canceled").Inc()
		return "", perr
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		logger.Log.Warnf("熔断器打开，跳过生成调用")
		metrics.GenerationRequests.WithLabelValues("breaker_open").Inc()
	case errors.Is(err, context.DeadlineExceeded):
		logger.Log.Warnf("生成调用超过 %s，视为没有响应", g.timeout)
		metrics.GenerationRequests.WithLabelValues("no_response").Inc()
	default:
		logger.Log.Errorf("生成调用失败: %v", err)
		metrics.GenerationRequests.WithLabelValues("error").Inc()
	}
	return "", nil
}
