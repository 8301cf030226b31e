package server

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/engine"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm/factory"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

// NewStore 初始化互动数据存储
func NewStore(c *config.Config, logger log.Logger) (storage.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.NewStore(ctx, c.DB)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init storage: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the store")
		if err := store.Close(); err != nil {
			log.NewHelper(logger).Errorf("close store: %v", err)
		}
	}
	return store, cleanup, nil
}

// NewGate 创建生成后端并做一次启动探测，探测失败时服务仍然启动，分析全部走模板兜底
func NewGate(c *config.Config, logger log.Logger) (*llm.Gate, error) {
	gate, err := factory.NewGate(context.Background(), c)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init llm backend: %v", err)
		return nil, err
	}
	if gate.Available() {
		log.NewHelper(logger).Infof("生成后端 [%s] 可用，模型: %s", gate.BackendName(), c.LLM.Model)
	} else {
		log.NewHelper(logger).Warnf("生成后端 [%s] 不可用，所有分析将使用模板结果", gate.BackendName())
	}
	return gate, nil
}

// NewEngine 初始化核心引擎
func NewEngine(gate *llm.Gate, store storage.Store, c *config.Config) *engine.Engine {
	return engine.NewEngine(gate, store, c.Generation)
}
