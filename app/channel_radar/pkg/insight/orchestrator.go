package insight

import (
	"context"
	"time"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
)

// Generator 文本生成入口，返回空字符串表示本次没有响应
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// availability 由启动探测决定是否可用的生成入口
type availability interface {
	Available() bool
}

// Orchestrator 驱动 生成 -> 相关性校验 -> 提取 的重试流程，耗尽后使用模板兜底
type Orchestrator struct {
	gen     Generator
	retries int
	delay   time.Duration
	backoff float64
}

// Option 配置 Orchestrator
type Option func(*Orchestrator)

// WithRetries 设置重试次数，总尝试次数为 retries+1
func WithRetries(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// WithRetryDelay 设置两次尝试之间的等待
func WithRetryDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithBackoff 设置每次重试等待的倍数，1 表示固定等待
func WithBackoff(f float64) Option {
	return func(o *Orchestrator) {
		if f >= 1 {
			o.backoff = f
		}
	}
}

// NewOrchestrator 创建重试编排器，默认重试 2 次、间隔 1s
func NewOrchestrator(gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:     gen,
		retries: 2,
		delay:   time.Second,
		backoff: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run 为指定类型生成结构化结果。只有 ctx 被取消时才返回错误，其余失败都会落到模板兜底
func (o *Orchestrator) Run(ctx context.Context, k Kind, pc PromptContext) (Result, error) {
	if a, ok := o.gen.(availability); ok && !a.Available() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		logger.Log.Infof("[%s] 生成后端不可用，直接使用模板兜底", k)
		metrics.InsightOutcomes.WithLabelValues(k.Key(), "fallback").Inc()
		return Fallback(k, pc.Keywords), nil
	}

	prompt := BuildPrompt(k, pc)
	delay := o.delay
	attempts := o.retries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		r, ok, err := o.attempt(ctx, k, prompt, attempt)
		if err != nil {
			return Result{}, err
		}
		if ok {
			metrics.InsightOutcomes.WithLabelValues(k.Key(), "llm").Inc()
			return r, nil
		}

		if attempt < attempts {
			if err := sleep(ctx, delay); err != nil {
				return Result{}, err
			}
			delay = time.Duration(float64(delay) * o.backoff)
		}
	}

	logger.Log.Warnf("[%s] %d 次尝试均失败，使用模板兜底", k, attempts)
	metrics.InsightOutcomes.WithLabelValues(k.Key(), "fallback").Inc()
	return Fallback(k, pc.Keywords), nil
}

func (o *Orchestrator) attempt(ctx context.Context, k Kind, prompt string, n int) (Result, bool, error) {
	raw, err := o.gen.Generate(ctx, prompt, k.MaxTokens(), k.Temperature())
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, false, ctx.Err()
		}
		logger.Log.Warnf("[%s] 第 %d 次生成失败: %v", k, n, err)
	}
	if raw == "" {
		logger.Log.Infof("[%s] 第 %d 次生成没有响应", k, n)
		metrics.InsightAttempts.WithLabelValues(k.Key(), "no_response").Inc()
		return Result{}, false, nil
	}
	logger.Log.Debugf("[%s] 第 %d 次原始输出: %s", k, n, preview(raw, 200))

	if reason, ok := rejectReason(raw, k); !ok {
		logger.Log.Infof("[%s] 第 %d 次输出与任务无关 (%s)", k, n, reason)
		metrics.InsightAttempts.WithLabelValues(k.Key(), "irrelevant").Inc()
		return Result{}, false, nil
	}

	r, stage, ok := extract(raw, prompt, k)
	if !ok {
		logger.Log.Infof("[%s] 第 %d 次无法提取 JSON", k, n)
		metrics.InsightAttempts.WithLabelValues(k.Key(), "unparsable").Inc()
		return Result{}, false, nil
	}

	logger.Log.Infof("[%s] 第 %d 次提取成功 (stage=%s)", k, n, stage)
	logger.Log.Debugf("[%s] 结构化结果: %v", k, r.Payload())
	metrics.InsightAttempts.WithLabelValues(k.Key(), "ok").Inc()
	metrics.ExtractionStages.WithLabelValues(k.Key(), stage).Inc()
	return r, true, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
