package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/engine"
	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

// mockAnalyzer 模拟分析引擎
type mockAnalyzer struct {
	keywordCalls int
	channelCalls int
	err          error
}

func (m *mockAnalyzer) AnalyzeChannel(ctx context.Context, req dm.ChannelAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	m.channelCalls++
	if m.err != nil {
		return nil, m.err
	}
	return &dm.ChannelStrategyResponse{
		ChannelID:         req.ChannelID,
		AnalysisID:        fmt.Sprintf("a-%d", m.channelCalls),
		StrategicInsights: dm.NewStrategicInsights(),
	}, nil
}

func (m *mockAnalyzer) AnalyzeKeywords(ctx context.Context, req dm.KeywordAnalysisRequest) (*dm.ChannelStrategyResponse, error) {
	m.keywordCalls++
	if m.err != nil {
		return nil, m.err
	}
	return &dm.ChannelStrategyResponse{
		ChannelID:         req.ChannelID,
		AnalysisID:        fmt.Sprintf("k-%d", m.keywordCalls),
		Region:            req.Region,
		Language:          req.Language,
		StrategicInsights: dm.NewStrategicInsights(),
	}, nil
}

// failingStore 所有操作都返回错误
type failingStore struct{ storage.Store }

func (failingStore) Get(ctx context.Context, ch, typ string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}
func (failingStore) Put(ctx context.Context, ch, typ string, data []byte) error {
	return errors.New("disk on fire")
}
func (failingStore) List(ctx context.Context, ch string) (map[string][]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Ping(ctx context.Context) error { return errors.New("disk on fire") }
func (failingStore) Backend() string                { return "failing" }

type staticBackend bool

func (s staticBackend) Available() bool     { return bool(s) }
func (s staticBackend) BackendName() string { return "ollama" }

func newStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStrategyUseCase_AnalyzeChannelPersists(t *testing.T) {
	store := newStore(t)
	uc := NewStrategyUseCase(&mockAnalyzer{}, store, nil, log.DefaultLogger)

	resp, err := uc.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{ChannelID: "UC1"})
	require.NoError(t, err)

	var saved dm.ChannelStrategyResponse
	found, err := storage.GetJSON(context.Background(), store, "UC1", dm.EngagementChannelStrategy, &saved)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, resp.AnalysisID, saved.AnalysisID)
}

func TestStrategyUseCase_AnalyzeChannelPersistFailureIgnored(t *testing.T) {
	uc := NewStrategyUseCase(&mockAnalyzer{}, failingStore{}, nil, log.DefaultLogger)

	resp, err := uc.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{ChannelID: "UC1"})
	require.NoError(t, err)
	assert.Equal(t, "UC1", resp.ChannelID)
}

func TestStrategyUseCase_AnalyzeChannelValidation(t *testing.T) {
	uc := NewStrategyUseCase(&mockAnalyzer{}, nil, nil, log.DefaultLogger)

	_, err := uc.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{})
	assert.True(t, kerrors.IsBadRequest(err))
}

func TestStrategyUseCase_AnalyzeChannelEngineError(t *testing.T) {
	uc := NewStrategyUseCase(&mockAnalyzer{err: errors.New("store down")}, nil, nil, log.DefaultLogger)

	_, err := uc.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{ChannelID: "UC1"})
	assert.True(t, kerrors.IsInternalServer(err))
}

func TestStrategyUseCase_AnalyzeKeywordsEmpty(t *testing.T) {
	m := &mockAnalyzer{}
	uc := NewStrategyUseCase(m, nil, nil, log.DefaultLogger)

	_, err := uc.AnalyzeKeywords(context.Background(), dm.KeywordAnalysisRequest{})
	assert.True(t, kerrors.IsBadRequest(err))
	assert.Equal(t, 0, m.keywordCalls)

	m.err = engine.ErrNoKeywords
	_, err = uc.AnalyzeKeywords(context.Background(), dm.KeywordAnalysisRequest{Keywords: []string{" "}})
	assert.True(t, kerrors.IsBadRequest(err))
}

func TestStrategyUseCase_AnalyzeKeywordsCache(t *testing.T) {
	m := &mockAnalyzer{}
	c := &config.Config{Cache: config.CacheConfig{TTL: time.Minute}}
	uc := NewStrategyUseCase(m, nil, c, log.DefaultLogger)
	ctx := context.Background()

	first, err := uc.AnalyzeKeywords(ctx, dm.KeywordAnalysisRequest{Keywords: []string{"go", "rust"}})
	require.NoError(t, err)
	assert.Equal(t, "global", first.Region)

	second, err := uc.AnalyzeKeywords(ctx, dm.KeywordAnalysisRequest{Keywords: []string{"go", "rust"}, Region: "global"})
	require.NoError(t, err)
	assert.Equal(t, first.AnalysisID, second.AnalysisID)
	assert.Equal(t, 1, m.keywordCalls)

	_, err = uc.AnalyzeKeywords(ctx, dm.KeywordAnalysisRequest{Keywords: []string{"go", "rust"}, Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.keywordCalls)
}

func TestStrategyUseCase_NoCacheWhenTTLZero(t *testing.T) {
	m := &mockAnalyzer{}
	uc := NewStrategyUseCase(m, nil, &config.Config{}, log.DefaultLogger)

	for i := 0; i < 2; i++ {
		_, err := uc.AnalyzeKeywords(context.Background(), dm.KeywordAnalysisRequest{Keywords: []string{"go"}})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, m.keywordCalls)
}

func TestEngagementUseCase_SaveGetList(t *testing.T) {
	uc := NewEngagementUseCase(newStore(t), log.DefaultLogger)
	ctx := context.Background()

	got, err := uc.Get(ctx, "UC1", "keyword_analysis")
	require.NoError(t, err)
	assert.False(t, got.Found)
	assert.Nil(t, got.Data)

	saved, err := uc.Save(ctx, dm.EngagementRecord{
		ChannelID:      "UC1",
		EngagementType: "keyword_analysis",
		Data:           map[string]any{"total_videos_analyzed": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "Channel engagement data saved successfully", saved.Message)

	got, err = uc.Get(ctx, "UC1", "keyword_analysis")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, map[string]any{"total_videos_analyzed": float64(3)}, got.Data)

	list, err := uc.List(ctx, "UC1")
	require.NoError(t, err)
	assert.Contains(t, list.Engagements, "keyword_analysis")
}

func TestEngagementUseCase_Errors(t *testing.T) {
	uc := NewEngagementUseCase(failingStore{}, log.DefaultLogger)
	ctx := context.Background()

	_, err := uc.Save(ctx, dm.EngagementRecord{ChannelID: "UC1"})
	assert.True(t, kerrors.IsBadRequest(err))

	_, err = uc.Save(ctx, dm.EngagementRecord{ChannelID: "UC1", EngagementType: "x", Data: map[string]any{}})
	assert.True(t, kerrors.IsInternalServer(err))

	_, err = uc.Get(ctx, "UC1", "x")
	assert.True(t, kerrors.IsInternalServer(err))

	_, err = uc.List(ctx, "UC1")
	assert.True(t, kerrors.IsInternalServer(err))
}

func TestHealthUseCase_Check(t *testing.T) {
	c := &config.Config{}
	c.ApplyDefaults()

	report := NewHealthUseCase(newStore(t), staticBackend(true), c, log.DefaultLogger).Check(context.Background())
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "connected", report.DatabaseStatus)
	assert.Equal(t, "available", report.OllamaModelStatus)
	assert.True(t, report.AIFeaturesEnabled)
	assert.Equal(t, APIVersion, report.Version)
	assert.Equal(t, "qwen2.5:7b", report.Configuration["ollama_model"])

	report = NewHealthUseCase(failingStore{}, staticBackend(false), c, log.DefaultLogger).Check(context.Background())
	assert.Equal(t, "error: disk on fire", report.DatabaseStatus)
	assert.Equal(t, "unavailable", report.OllamaModelStatus)
	assert.False(t, report.AIFeaturesEnabled)
}
