package server

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/channel_radar/app/channel_radar/internal/service"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
)

// NewHTTPServer 创建 HTTP 服务，过滤器顺序：路径归一化 -> 指标 -> CORS -> 限流
func NewHTTPServer(c *config.Config, s *service.ChannelRadarService, logger log.Logger) *http.Server {
	filters := []http.FilterFunc{
		normalizePath,
		recordMetrics,
		corsFilter(c.Server.CORSOrigins),
	}
	if c.Server.RateLimit.Requests > 0 {
		filters = append(filters, rateLimitFilter(c.Server.RateLimit.Requests, c.Server.RateLimit.Window))
		log.NewHelper(logger).Infof("接口限流已开启: 每个 IP %d 次 / %s", c.Server.RateLimit.Requests, c.Server.RateLimit.Window)
	}

	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Filter(filters...),
		http.Address(c.Addr()),
	}
	if c.Server.Timeout > 0 {
		opts = append(opts, http.Timeout(c.Server.Timeout))
	}

	srv := http.NewServer(opts...)
	service.RegisterChannelRadarHTTPServer(srv, s)
	srv.Handle("/metrics", promhttp.Handler())

	return srv
}
