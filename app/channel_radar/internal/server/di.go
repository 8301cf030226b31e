package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/channel_radar/app/channel_radar/internal/service"
	"github.com/iWorld-y/channel_radar/app/channel_radar/internal/usecase"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/engine"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
)

// ProviderSet 是频道策略服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Data providers
	NewStore,
	NewGate,
	NewEngine,
	wire.Bind(new(usecase.Analyzer), new(*engine.Engine)),
	wire.Bind(new(usecase.BackendStatus), new(*llm.Gate)),

	// UseCase providers
	usecase.NewStrategyUseCase,
	usecase.NewEngagementUseCase,
	usecase.NewHealthUseCase,

	// Service providers
	service.NewChannelRadarService,
)
