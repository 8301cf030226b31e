package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/insight"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

// ErrNoKeywords 请求中没有可用的关键词
var ErrNoKeywords = errors.New("no keywords provided")

// 没有存储数据时使用的占位关键词
var placeholderKeywords = []string{"general content", "youtube", "content creation"}

// Engine 核心处理引擎：按类型编排生成并汇总为策略洞察
type Engine struct {
	orch  *insight.Orchestrator
	store storage.Store
	now   func() time.Time
}

// NewEngine 创建引擎实例
func NewEngine(gen insight.Generator, store storage.Store, cfg config.GenerationConfig) *Engine {
	return &Engine{
		orch: insight.NewOrchestrator(gen,
			insight.WithRetries(cfg.Retries),
			insight.WithRetryDelay(cfg.RetryDelay),
			insight.WithBackoff(cfg.Backoff),
		),
		store: store,
		now:   time.Now,
	}
}

// AnalyzeKeywords 基于调用方提供的关键词并发生成六类洞察
func (e *Engine) AnalyzeKeywords(ctx context.Context, req dm.KeywordAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	req.Normalize()
	keywords := cleanKeywords(req.Keywords)
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	logger.Log.Infof("开始关键词分析 [%s]，共 %d 个关键词", req.ChannelID, len(keywords))

	pc := insight.PromptContext{
		Summary:  "Channel covering topics like " + strings.Join(head(keywords, 5), ", "),
		Keywords: keywords,
		Region:   req.Region,
		Language: req.Language,
	}
	insights, err := e.Aggregate(ctx, pc, true)
	if err != nil {
		return nil, err
	}
	return e.response(req.ChannelID, req.Region, req.Language, insights), nil
}

// AnalyzeChannel 读取已存储的关键词统计，顺序生成六类洞察以减少后端争用
func (e *Engine) AnalyzeChannel(ctx context.Context, req dm.ChannelAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	req.Normalize()
	logger.Log.Infof("开始频道策略分析 [%s]，地区: %s，语言: %s", req.ChannelID, req.Region, req.Language)

	keywords, videos, err := e.channelData(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	top := "general content"
	if len(keywords) > 0 {
		top = strings.Join(head(keywords, 5), ", ")
	}
	pc := insight.PromptContext{
		Summary:  fmt.Sprintf("Channel with %d videos covering topics like %s", videos, top),
		Keywords: keywords,
		Region:   req.Region,
		Language: req.Language,
	}

	insights, err := e.Aggregate(ctx, pc, false)
	if err != nil {
		return nil, err
	}
	return e.response(req.ChannelID, req.Region, req.Language, insights), nil
}

// channelData 读取频道关键词与视频数，没有数据时返回占位关键词
func (e *Engine) channelData(ctx context.Context, channelID string) ([]string, int, error) {
	if e.store == nil {
		return placeholderKeywords, 0, nil
	}

	data, found, err := e.store.Get(ctx, channelID, dm.EngagementKeywordAnalysis)
	if err != nil {
		return nil, 0, fmt.Errorf("读取频道数据失败: %w", err)
	}
	if !found {
		logger.Log.Warnf("频道 [%s] 没有关键词数据，使用占位数据", channelID)
		return placeholderKeywords, 0, nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Log.Warnf("频道 [%s] 关键词数据无法解析，使用占位数据: %v", channelID, err)
		return placeholderKeywords, 0, nil
	}
	analysis := dm.ParseKeywordAnalysis(raw)
	keywords := cleanKeywords(analysis.Keywords())
	logger.Log.Infof("频道 [%s] 找到 %d 个关键词", channelID, len(keywords))
	return keywords, analysis.TotalVideosAnalyzed, nil
}

// Aggregate 为六类洞察分别运行编排器并按固定顺序汇总。
// 单个类型的异常只影响该类型；ctx 取消时丢弃部分结果并返回错误
func (e *Engine) Aggregate(ctx context.Context, pc insight.PromptContext, concurrent bool) (dm.StrategicInsights, error) {
	results := make([]insight.Result, len(insight.Kinds))

	if concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, k := range insight.Kinds {
			g.Go(func() error {
				r, err := e.runKind(gctx, k, pc)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logger.Log.Warnf("洞察汇总被取消: %v", err)
			return dm.StrategicInsights{}, err
		}
	} else {
		for i, k := range insight.Kinds {
			r, err := e.runKind(ctx, k, pc)
			if err != nil {
				logger.Log.Warnf("洞察汇总被取消: %v", err)
				return dm.StrategicInsights{}, err
			}
			results[i] = r
		}
	}

	insights := assemble(results)
	logger.Log.Infof("洞察汇总完成: trending=%d gaps=%d titles=%d clusters=%d questions=%d regional=%d",
		len(insights.TrendingTopics), len(insights.KeywordGaps), len(insights.TitleSuggestions),
		len(insights.KeywordClusters), len(insights.ViewerQuestions), len(insights.RegionalKeywords))
	return insights, nil
}

// runKind 运行单个类型，panic 或非取消错误都替换为该类型的空值
func (e *Engine) runKind(ctx context.Context, k insight.Kind, pc insight.PromptContext) (r insight.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Log.Errorf("[%s] 分析异常: %v", k, p)
			metrics.InsightOutcomes.WithLabelValues(k.Key(), "failed").Inc()
			r, err = insight.EmptyResult(k), nil
		}
	}()

	r, err = e.orch.Run(ctx, k, pc)
	if err != nil {
		if ctx.Err() != nil {
			return insight.Result{}, ctx.Err()
		}
		logger.Log.Errorf("[%s] 分析失败: %v", k, err)
		metrics.InsightOutcomes.WithLabelValues(k.Key(), "failed").Inc()
		return insight.EmptyResult(k), nil
	}
	return r, nil
}

func assemble(results []insight.Result) dm.StrategicInsights {
	out := dm.NewStrategicInsights()
	for _, r := range results {
		items := r.Items
		if items == nil {
			items = []string{}
		}
		switch r.Kind {
		case insight.TrendingTopics:
			out.TrendingTopics = items
		case insight.KeywordGaps:
			out.KeywordGaps = items
		case insight.TitleSuggestions:
			out.TitleSuggestions = items
		case insight.KeywordClusters:
			if r.Clusters != nil {
				out.KeywordClusters = r.Clusters
			}
		case insight.ViewerQuestions:
			out.ViewerQuestions = items
		case insight.RegionalKeywords:
			out.RegionalKeywords = items
		}
	}
	return out
}

func (e *Engine) response(channelID, region, language string, insights dm.StrategicInsights) *dm.ChannelStrategyResponse {
	return &dm.ChannelStrategyResponse{
		ChannelID:         channelID,
		AnalysisID:        uuid.NewString(),
		AnalysisTimestamp: e.now(),
		Region:            region,
		Language:          language,
		StrategicInsights: insights,
	}
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
