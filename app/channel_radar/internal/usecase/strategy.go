package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/engine"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

// Analyzer 策略分析引擎
type Analyzer interface {
	AnalyzeChannel(ctx context.Context, req dm.ChannelAnalysisRequest) (*dm.ChannelStrategyResponse, error)
	AnalyzeKeywords(ctx context.Context, req dm.KeywordAnalysisRequest) (*dm.ChannelStrategyResponse, error)
}

// StrategyUseCase 频道策略分析业务逻辑
type StrategyUseCase struct {
	analyzer Analyzer
	store    storage.Store
	cache    *cache.Cache
	validate *validator.Validate
	log      *log.Helper
}

// NewStrategyUseCase 创建策略分析业务逻辑实例，缓存 TTL 为 0 时不缓存
func NewStrategyUseCase(analyzer Analyzer, store storage.Store, c *config.Config, logger log.Logger) *StrategyUseCase {
	uc := &StrategyUseCase{
		analyzer: analyzer,
		store:    store,
		validate: validator.New(),
		log:      log.NewHelper(logger),
	}
	if c != nil && c.Cache.TTL > 0 {
		uc.cache = cache.New(c.Cache.TTL, 2*c.Cache.TTL)
	}
	return uc
}

// AnalyzeChannel 基于已存储的关键词数据生成策略，并把结果写回存储
func (uc *StrategyUseCase) AnalyzeChannel(ctx context.Context, req dm.ChannelAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, kerrors.BadRequest("INVALID_REQUEST", err.Error())
	}

	start := time.Now()
	resp, err := uc.analyzer.AnalyzeChannel(ctx, req)
	if err != nil {
		return nil, uc.analysisError(ctx, err)
	}
	uc.log.WithContext(ctx).Infof("频道策略分析完成 [%s]，耗时 %s", resp.ChannelID, time.Since(start).Round(time.Millisecond))

	if uc.store != nil {
		if err := storage.PutJSON(ctx, uc.store, resp.ChannelID, dm.EngagementChannelStrategy, resp); err != nil {
			uc.log.WithContext(ctx).Errorf("保存频道策略失败 [%s]: %v", resp.ChannelID, err)
		}
	}
	return resp, nil
}

// AnalyzeKeywords 直接分析请求中的关键词，结果按请求内容缓存
func (uc *StrategyUseCase) AnalyzeKeywords(ctx context.Context, req dm.KeywordAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, kerrors.BadRequest("NO_KEYWORDS", "No keywords provided")
	}
	req.Normalize()

	key := cacheKey(req)
	if uc.cache != nil {
		if v, ok := uc.cache.Get(key); ok {
			metrics.InsightCacheHits.Inc()
			uc.log.WithContext(ctx).Infof("关键词分析命中缓存 [%s]", req.ChannelID)
			return v.(*dm.ChannelStrategyResponse), nil
		}
		metrics.InsightCacheMisses.Inc()
	}

	resp, err := uc.analyzer.AnalyzeKeywords(ctx, req)
	if err != nil {
		return nil, uc.analysisError(ctx, err)
	}
	if uc.cache != nil {
		uc.cache.SetDefault(key, resp)
	}
	return resp, nil
}

func (uc *StrategyUseCase) analysisError(ctx context.Context, err error) error {
	if errors.Is(err, engine.ErrNoKeywords) {
		return kerrors.BadRequest("NO_KEYWORDS", "No keywords provided")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	uc.log.WithContext(ctx).Errorf("分析失败: %v", err)
	return kerrors.InternalServer("ANALYSIS_FAILED", "Analysis failed: "+err.Error())
}

func cacheKey(req dm.KeywordAnalysisRequest) string {
	return strings.Join([]string{
		req.ChannelID, req.Region, req.Language, strings.Join(req.Keywords, "\x1f"),
	}, "\x1e")
}
