package usecase

import (
	"context"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

// EngagementUseCase 频道互动数据的读写
type EngagementUseCase struct {
	store    storage.Store
	validate *validator.Validate
	log      *log.Helper
}

// NewEngagementUseCase 创建互动数据业务逻辑实例
func NewEngagementUseCase(store storage.Store, logger log.Logger) *EngagementUseCase {
	return &EngagementUseCase{store: store, validate: validator.New(), log: log.NewHelper(logger)}
}

// Get 读取单条互动数据，不存在时 Found 为 false
func (uc *EngagementUseCase) Get(ctx context.Context, channelID, engagementType string) (*dm.EngagementResponse, error) {
	resp := &dm.EngagementResponse{ChannelID: channelID, EngagementType: engagementType}

	data, ok, err := uc.store.Get(ctx, channelID, engagementType)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("读取互动数据失败 [%s/%s]: %v", channelID, engagementType, err)
		return nil, kerrors.InternalServer("DATABASE_ERROR", "Database retrieval failed: "+err.Error())
	}
	if !ok {
		return resp, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, kerrors.InternalServer("DATABASE_ERROR", "Stored data is corrupted: "+err.Error())
	}
	resp.Data = v
	resp.Found = true
	return resp, nil
}

// List 读取频道下的全部互动数据
func (uc *EngagementUseCase) List(ctx context.Context, channelID string) (*dm.EngagementListResponse, error) {
	rows, err := uc.store.List(ctx, channelID)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("列出互动数据失败 [%s]: %v", channelID, err)
		return nil, kerrors.InternalServer("DATABASE_ERROR", "Database retrieval failed: "+err.Error())
	}

	engagements := make(map[string]any, len(rows))
	for typ, data := range rows {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			uc.log.WithContext(ctx).Warnf("跳过无法解析的互动数据 [%s/%s]: %v", channelID, typ, err)
			continue
		}
		engagements[typ] = v
	}
	return &dm.EngagementListResponse{ChannelID: channelID, Engagements: engagements}, nil
}

// Save 写入或覆盖一条互动数据
func (uc *EngagementUseCase) Save(ctx context.Context, rec dm.EngagementRecord) (*dm.SaveEngagementResponse, error) {
	if err := uc.validate.Struct(rec); err != nil {
		return nil, kerrors.BadRequest("INVALID_REQUEST", err.Error())
	}

	uc.log.WithContext(ctx).Infof("保存互动数据 [%s/%s]", rec.ChannelID, rec.EngagementType)
	if err := storage.PutJSON(ctx, uc.store, rec.ChannelID, rec.EngagementType, rec.Data); err != nil {
		uc.log.WithContext(ctx).Errorf("保存互动数据失败 [%s/%s]: %v", rec.ChannelID, rec.EngagementType, err)
		return nil, kerrors.InternalServer("DATABASE_ERROR", "Database save failed: "+err.Error())
	}
	return &dm.SaveEngagementResponse{
		Message:        "Channel engagement data saved successfully",
		ChannelID:      rec.ChannelID,
		EngagementType: rec.EngagementType,
	}, nil
}
