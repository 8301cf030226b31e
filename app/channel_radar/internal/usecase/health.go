package usecase

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

// APIVersion 对外接口版本
const APIVersion = "2.0.0"

// BackendStatus 生成后端的启动探测结果
type BackendStatus interface {
	Available() bool
	BackendName() string
}

// HealthReport 健康检查结果
type HealthReport struct {
	Status               string         `json:"status"`
	DatabaseStatus       string         `json:"database_status"`
	DatabaseBackend      string         `json:"database_backend,omitempty"`
	OllamaModelStatus    string         `json:"ollama_model_status"`
	OllamaModelAvailable bool           `json:"ollama_model_available"`
	AIFeaturesEnabled    bool           `json:"ai_features_enabled"`
	LLMBackend           string         `json:"llm_backend"`
	Version              string         `json:"version"`
	Configuration        map[string]any `json:"configuration"`
}

// HealthUseCase 汇总存储与生成后端的状态
type HealthUseCase struct {
	store   storage.Store
	backend BackendStatus
	conf    *config.Config
	log     *log.Helper
}

// NewHealthUseCase 创建健康检查实例
func NewHealthUseCase(store storage.Store, backend BackendStatus, c *config.Config, logger log.Logger) *HealthUseCase {
	return &HealthUseCase{store: store, backend: backend, conf: c, log: log.NewHelper(logger)}
}

// Check 探测存储连接，生成后端使用启动时的探测结果
func (uc *HealthUseCase) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:         "healthy",
		DatabaseStatus: "connected",
		Version:        APIVersion,
	}

	if uc.store == nil {
		report.DatabaseStatus = "not configured"
	} else {
		report.DatabaseBackend = uc.store.Backend()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := uc.store.Ping(pingCtx); err != nil {
			uc.log.WithContext(ctx).Warnf("数据库健康检查失败: %v", err)
			report.DatabaseStatus = "error: " + err.Error()
		}
	}

	report.OllamaModelStatus = "unavailable"
	if uc.backend != nil {
		report.LLMBackend = uc.backend.BackendName()
		if uc.backend.Available() {
			report.OllamaModelStatus = "available"
			report.OllamaModelAvailable = true
			report.AIFeaturesEnabled = true
		}
	}

	if uc.conf != nil {
		report.Configuration = uc.conf.Summary()
	}
	return report
}
