package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/insight"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/llm"
	dm "github.com/iWorld-y/channel_radar/app/channel_radar/pkg/model"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/storage"
)

var fastRetry = config.GenerationConfig{Retries: 2, Backoff: 1}

// proseBackend 永远返回非 JSON 文本
type proseBackend struct{ calls int32 }

func (b *proseBackend) Generate(ctx context.Context, req *llm.GenerationRequest) (string, error) {
	atomic.AddInt32(&b.calls, 1)
	return "Sure! Here are some great ideas for your channel about crypto.", nil
}
func (b *proseBackend) Probe(ctx context.Context) error { return nil }
func (b *proseBackend) Name() string                    { return "prose" }

// funcGenerator 按提示词内容返回结果
type funcGenerator func(prompt string) (string, error)

func (f funcGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f(prompt)
}

func TestAnalyzeKeywords_ProseFallsBack(t *testing.T) {
	b := &proseBackend{}
	gate := llm.NewGate(b, true, llm.GateConfig{})
	e := NewEngine(gate, nil, fastRetry)

	resp, err := e.AnalyzeKeywords(context.Background(), dm.KeywordAnalysisRequest{
		ChannelID: "UC1",
		Keywords:  []string{"Bitcoin", "Ethereum"},
	})
	require.NoError(t, err)

	si := resp.StrategicInsights
	assert.Contains(t, si.TrendingTopics, "Bitcoin Trends")
	assert.NotContains(t, si.TrendingTopics, "trending_topics")
	assert.Contains(t, si.KeywordGaps, "Advanced Bitcoin")
	assert.Contains(t, si.TitleSuggestions, "How to Master Ethereum")
	assert.Equal(t, []string{"Bitcoin", "Bitcoin tips", "Bitcoin guide"}, si.KeywordClusters["series1"])
	assert.Contains(t, si.ViewerQuestions, "How do I get started with Bitcoin?")
	assert.Contains(t, si.RegionalKeywords, "Local Bitcoin")

	// 6 个类型 x 3 次尝试
	assert.Equal(t, int32(18), atomic.LoadInt32(&b.calls))
	assert.Equal(t, "global", resp.Region)
	assert.Equal(t, "en", resp.Language)
	assert.NotEmpty(t, resp.AnalysisID)
}

func TestAnalyzeKeywords_BackendUnavailable(t *testing.T) {
	b := &proseBackend{}
	gate := llm.NewGate(b, false, llm.GateConfig{})
	e := NewEngine(gate, nil, fastRetry)

	resp, err := e.AnalyzeKeywords(context.Background(), dm.KeywordAnalysisRequest{Keywords: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.calls))
	assert.Equal(t, "keyword-analysis", resp.ChannelID)
	assert.Len(t, resp.StrategicInsights.TrendingTopics, 3)
}

func TestAnalyzeKeywords_NoKeywords(t *testing.T) {
	e := NewEngine(funcGenerator(func(string) (string, error) { return "", nil }), nil, fastRetry)
	_, err := e.AnalyzeKeywords(context.Background(), dm.KeywordAnalysisRequest{Keywords: []string{" ", ""}})
	assert.ErrorIs(t, err, ErrNoKeywords)
}

func TestAggregate_UsesModelOutput(t *testing.T) {
	gen := funcGenerator(func(prompt string) (string, error) {
		for _, k := range insight.Kinds {
			if strings.Contains(prompt, `{"`+k.Key()+`"`) {
				if k.Clustered() {
					return `{"keyword_clusters": {"Basics": ["go tour"]}}`, nil
				}
				return `{"` + k.Key() + `": ["from model"]}`, nil
			}
		}
		return "", nil
	})
	e := NewEngine(gen, nil, fastRetry)

	si, err := e.Aggregate(context.Background(), insight.PromptContext{Keywords: []string{"go"}}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"from model"}, si.TrendingTopics)
	assert.Equal(t, []string{"from model"}, si.RegionalKeywords)
	assert.Equal(t, map[string][]string{"Basics": {"go tour"}}, si.KeywordClusters)
	assert.Equal(t, []string{"from model?"}, si.ViewerQuestions)
}

func TestAggregate_PanicIsolatedPerKind(t *testing.T) {
	gen := funcGenerator(func(prompt string) (string, error) {
		if strings.Contains(prompt, "title_suggestions") {
			panic("unexpected backend schema")
		}
		return "", nil
	})
	e := NewEngine(gen, nil, config.GenerationConfig{Backoff: 1})

	for _, concurrent := range []bool{true, false} {
		si, err := e.Aggregate(context.Background(), insight.PromptContext{Keywords: []string{"go"}}, concurrent)
		require.NoError(t, err)
		assert.NotNil(t, si.TitleSuggestions)
		assert.Empty(t, si.TitleSuggestions)
		assert.NotEmpty(t, si.TrendingTopics)
	}
}

func TestAggregate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := funcGenerator(func(prompt string) (string, error) {
		cancel()
		return "", context.Canceled
	})
	e := NewEngine(gen, nil, fastRetry)

	_, err := e.Aggregate(ctx, insight.PromptContext{Keywords: []string{"go"}}, true)
	assert.ErrorIs(t, err, context.Canceled)

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	_, err = e.Aggregate(ctx2, insight.PromptContext{}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeChannel_StoredData(t *testing.T) {
	store, err := storage.NewBadgerStore("")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, storage.PutJSON(context.Background(), store, "UC9", dm.EngagementKeywordAnalysis, map[string]any{
		"top_keywords": []map[string]any{
			{"keyword": "golang", "frequency": 9},
			{"keyword": "generics", "frequency": 4},
			{"keyword": "channels", "frequency": 2},
		},
		"total_videos_analyzed": 12,
	}))

	var prompts []string
	gen := funcGenerator(func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "", nil
	})
	e := NewEngine(gen, store, config.GenerationConfig{Backoff: 1})

	resp, err := e.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{ChannelID: "UC9", Region: "DE"})
	require.NoError(t, err)
	require.Len(t, prompts, 6)
	assert.Contains(t, prompts[0], "Channel with 12 videos covering topics like golang, generics, channels")
	assert.Contains(t, resp.StrategicInsights.TrendingTopics, "golang Trends")
	assert.Equal(t, "DE", resp.Region)
}

func TestAnalyzeChannel_Placeholder(t *testing.T) {
	store, err := storage.NewBadgerStore("")
	require.NoError(t, err)
	defer store.Close()

	var first string
	gen := funcGenerator(func(prompt string) (string, error) {
		if first == "" {
			first = prompt
		}
		return "", nil
	})
	e := NewEngine(gen, store, config.GenerationConfig{Backoff: 1})

	resp, err := e.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{ChannelID: "unknown"})
	require.NoError(t, err)
	assert.Contains(t, first, "Channel with 0 videos covering topics like general content, youtube, content creation")
	assert.Contains(t, resp.StrategicInsights.KeywordGaps, "Advanced general content")
}

func TestAnalyzeChannel_UnavailableSkipsRetryDelay(t *testing.T) {
	b := &proseBackend{}
	gate := llm.NewGate(b, false, llm.GateConfig{})
	e := NewEngine(gate, nil, config.GenerationConfig{Retries: 2, RetryDelay: time.Hour, Backoff: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	resp, err := e.AnalyzeChannel(ctx, dm.ChannelAnalysisRequest{ChannelID: "UC1"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.calls))
	assert.Contains(t, resp.StrategicInsights.TrendingTopics, "general content Trends")
}

func TestAnalyzeChannel_LooseStoredShapes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		summary string
	}{
		{
			name:    "string keywords are skipped",
			data:    `{"top_keywords": ["bitcoin", "eth"], "total_videos_analyzed": 7}`,
			summary: "Channel with 7 videos covering topics like general content",
		},
		{
			name:    "float frequency",
			data:    `{"top_keywords": [{"keyword": "bitcoin", "frequency": 2.5}, "eth", {"frequency": 1}], "total_videos_analyzed": 3.0}`,
			summary: "Channel with 3 videos covering topics like bitcoin",
		},
		{
			name:    "string count",
			data:    `{"top_keywords": [{"keyword": "solana"}], "total_videos_analyzed": "3"}`,
			summary: "Channel with 0 videos covering topics like solana",
		},
		{
			name:    "not an object",
			data:    `["bitcoin"]`,
			summary: "Channel with 0 videos covering topics like general content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := storage.NewBadgerStore("")
			require.NoError(t, err)
			defer store.Close()
			require.NoError(t, store.Put(context.Background(), "UC1", dm.EngagementKeywordAnalysis, []byte(tt.data)))

			var first string
			gen := funcGenerator(func(prompt string) (string, error) {
				if first == "" {
					first = prompt
				}
				return "", nil
			})
			e := NewEngine(gen, store, config.GenerationConfig{Backoff: 1})

			resp, err := e.AnalyzeChannel(context.Background(), dm.ChannelAnalysisRequest{ChannelID: "UC1"})
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Contains(t, first, tt.summary)
		})
	}
}
