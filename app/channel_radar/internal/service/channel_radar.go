package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/channel_radar/app/channel_radar/internal/usecase"
	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
)

// EngagementKey 单条互动数据的路径参数
type EngagementKey struct {
	ChannelID      string `json:"channel_id"`
	EngagementType string `json:"engagement_type"`
}

// APIInfo 根路径返回的接口说明
type APIInfo struct {
	Message     string            `json:"message"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

type ChannelRadarService struct {
	strategy   *usecase.StrategyUseCase
	engagement *usecase.EngagementUseCase
	health     *usecase.HealthUseCase
	log        *log.Helper
}

func NewChannelRadarService(strategy *usecase.StrategyUseCase, engagement *usecase.EngagementUseCase, health *usecase.HealthUseCase, logger log.Logger) *ChannelRadarService {
	return &ChannelRadarService{
		strategy:   strategy,
		engagement: engagement,
		health:     health,
		log:        log.NewHelper(logger),
	}
}

func (s *ChannelRadarService) AnalyzeChannelStrategy(ctx context.Context, req *dm.ChannelAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	s.log.WithContext(ctx).Infof("收到频道策略分析请求 [%s]", req.ChannelID)
	return s.strategy.AnalyzeChannel(ctx, *req)
}

func (s *ChannelRadarService) AnalyzeKeywords(ctx context.Context, req *dm.KeywordAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	s.log.WithContext(ctx).Infof("收到关键词分析请求 [%s]，共 %d 个关键词", req.ChannelID, len(req.Keywords))
	return s.strategy.AnalyzeKeywords(ctx, *req)
}

func (s *ChannelRadarService) GetChannelEngagement(ctx context.Context, req *EngagementKey) (*dm.EngagementResponse, error) {
	return s.engagement.Get(ctx, req.ChannelID, req.EngagementType)
}

func (s *ChannelRadarService) ListChannelEngagements(ctx context.Context, req *EngagementKey) (*dm.EngagementListResponse, error) {
	return s.engagement.List(ctx, req.ChannelID)
}

func (s *ChannelRadarService) SaveChannelEngagement(ctx context.Context, req *dm.EngagementRecord) (*dm.SaveEngagementResponse, error) {
	return s.engagement.Save(ctx, *req)
}

func (s *ChannelRadarService) Health(ctx context.Context) *usecase.HealthReport {
	return s.health.Check(ctx)
}

func (s *ChannelRadarService) Info() *APIInfo {
	return &APIInfo{
		Message:     "YouTube Channel Strategy Analyzer API",
		Version:     usecase.APIVersion,
		Description: "AI-powered channel analysis and strategic recommendations",
		Endpoints: map[string]string{
			"POST /analyze-channel-strategy":                        "Main channel strategy analysis (uses stored data)",
			"POST /analyze-keywords":                                "Direct keyword analysis (accepts keywords as input)",
			"GET /channel-engagement/{channel_id}/{engagement_type}": "Retrieve stored data",
			"GET /channel-engagement/{channel_id}":                  "Retrieve all stored data for a channel",
			"POST /channel-engagement":                              "Save analysis data",
			"GET /health":                                           "Health check",
			"GET /metrics":                                          "Prometheus metrics",
		},
	}
}
