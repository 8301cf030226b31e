package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/channel_radar/app/channel_radar/internal/server"
	"github.com/iWorld-y/channel_radar/app/channel_radar/internal/usecase"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm/factory"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name = "channel_radar"
	// Version 是服务的版本号
	Version = usecase.APIVersion
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "channel_radar",
		Short:         "YouTube channel strategy analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagconf, "conf", "", "config path, eg: --conf app/channel_radar/configs/config.yaml")

	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newProbeCmd())
	return root
}

// setup 加载配置并初始化日志
func setup() (*config.Config, log.Logger, error) {
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		return nil, nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, nil, fmt.Errorf("无法初始化日志: %w", err)
	}

	kl := log.With(logger.NewKratosLogger(),
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)
	return cfg, kl, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, kl, err := setup()
			if err != nil {
				return err
			}
			logger.Log.Infof("启动频道雷达 %s，监听 %s", Version, cfg.Addr())

			app, cleanup, err := initApp(cfg, kl)
			if err != nil {
				return err
			}
			defer cleanup()

			return app.Run()
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		channelID string
		keywords  string
		region    string
		language  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis and print the JSON result",
		Long: `Without --keywords the stored keyword analysis of --channel is used.

Examples:
  channel_radar analyze --channel UC123
  channel_radar analyze --keywords "bitcoin,ethereum" --region US`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, kl, err := setup()
			if err != nil {
				return err
			}
			uc, cleanup, err := initStrategy(cfg, kl)
			if err != nil {
				return err
			}
			defer cleanup()

			var resp *dm.ChannelStrategyResponse
			if keywords != "" {
				resp, err = uc.AnalyzeKeywords(cmd.Context(), dm.KeywordAnalysisRequest{
					ChannelID: channelID,
					Keywords:  splitList(keywords),
					Region:    region,
					Language:  language,
				})
			} else {
				resp, err = uc.AnalyzeChannel(cmd.Context(), dm.ChannelAnalysisRequest{
					ChannelID: channelID,
					Region:    region,
					Language:  language,
				})
			}
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&channelID, "channel", "", "Channel ID")
	cmd.Flags().StringVar(&keywords, "keywords", "", "Comma separated keywords")
	cmd.Flags().StringVar(&region, "region", "global", "Target region")
	cmd.Flags().StringVar(&language, "language", "en", "Target language")
	return cmd
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check the generation backend and print the configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			backend, err := factory.NewBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			available := llm.ProbeBackend(cmd.Context(), backend, 10*time.Second)
			return printJSON(map[string]any{
				"backend":       backend.Name(),
				"model":         cfg.LLM.Model,
				"available":     available,
				"configuration": cfg.Summary(),
			})
		},
	}
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
		kratos.Context(context.Background()),
	)
}

// initStrategy 组装命令行分析所需的依赖，不启动 HTTP 服务
func initStrategy(cfg *config.Config, kl log.Logger) (*usecase.StrategyUseCase, func(), error) {
	store, cleanup, err := server.NewStore(cfg, kl)
	if err != nil {
		return nil, nil, err
	}
	gate, err := server.NewGate(cfg, kl)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	eng := server.NewEngine(gate, store, cfg)
	return usecase.NewStrategyUseCase(eng, store, cfg, kl), cleanup, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
