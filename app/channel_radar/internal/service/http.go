package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"

	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
)

const (
	OperationAnalyzeChannelStrategy = "/channel_radar.v1.ChannelRadar/AnalyzeChannelStrategy"
	OperationAnalyzeKeywords        = "/channel_radar.v1.ChannelRadar/AnalyzeKeywords"
	OperationGetChannelEngagement   = "/channel_radar.v1.ChannelRadar/GetChannelEngagement"
	OperationListChannelEngagements = "/channel_radar.v1.ChannelRadar/ListChannelEngagements"
	OperationSaveChannelEngagement  = "/channel_radar.v1.ChannelRadar/SaveChannelEngagement"
)

// RegisterChannelRadarHTTPServer 注册全部 HTTP 路由
func RegisterChannelRadarHTTPServer(s *http.Server, srv *ChannelRadarService) {
	r := s.Route("/")
	r.GET("/", _ChannelRadar_Info0_HTTP_Handler(srv))
	r.GET("/health", _ChannelRadar_Health0_HTTP_Handler(srv))
	r.POST("/analyze-channel-strategy", _ChannelRadar_AnalyzeChannelStrategy0_HTTP_Handler(srv))
	r.POST("/analyze-keywords", _ChannelRadar_AnalyzeKeywords0_HTTP_Handler(srv))
	r.GET("/channel-engagement/{channel_id}/{engagement_type}", _ChannelRadar_GetChannelEngagement0_HTTP_Handler(srv))
	r.GET("/channel-engagement/{channel_id}", _ChannelRadar_ListChannelEngagements0_HTTP_Handler(srv))
	r.POST("/channel-engagement", _ChannelRadar_SaveChannelEngagement0_HTTP_Handler(srv))
}

func _ChannelRadar_Info0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		return ctx.Result(200, srv.Info())
	}
}

func _ChannelRadar_Health0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		return ctx.Result(200, srv.Health(ctx))
	}
}

func _ChannelRadar_AnalyzeChannelStrategy0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in dm.ChannelAnalysisRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzeChannelStrategy)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.AnalyzeChannelStrategy(ctx, req.(*dm.ChannelAnalysisRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*dm.ChannelStrategyResponse))
	}
}

func _ChannelRadar_AnalyzeKeywords0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in dm.KeywordAnalysisRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzeKeywords)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.AnalyzeKeywords(ctx, req.(*dm.KeywordAnalysisRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*dm.ChannelStrategyResponse))
	}
}

func _ChannelRadar_GetChannelEngagement0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		vars := ctx.Vars()
		in := EngagementKey{ChannelID: vars.Get("channel_id"), EngagementType: vars.Get("engagement_type")}
		http.SetOperation(ctx, OperationGetChannelEngagement)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.GetChannelEngagement(ctx, req.(*EngagementKey))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*dm.EngagementResponse))
	}
}

func _ChannelRadar_ListChannelEngagements0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := EngagementKey{ChannelID: ctx.Vars().Get("channel_id")}
		http.SetOperation(ctx, OperationListChannelEngagements)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.ListChannelEngagements(ctx, req.(*EngagementKey))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*dm.EngagementListResponse))
	}
}

func _ChannelRadar_SaveChannelEngagement0_HTTP_Handler(srv *ChannelRadarService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in dm.EngagementRecord
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationSaveChannelEngagement)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.SaveChannelEngagement(ctx, req.(*dm.EngagementRecord))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*dm.SaveEngagementResponse))
	}
}
