package model

import "time"

// 存储中使用的互动数据类型
const (
	EngagementKeywordAnalysis = "keyword_analysis"
	EngagementChannelStrategy = "channel_strategy"
)

// StrategicInsights 六类洞察的汇总，所有字段始终存在
type StrategicInsights struct {
	TrendingTopics   []string            `json:"trending_topics"`
	KeywordGaps      []string            `json:"keyword_gaps"`
	TitleSuggestions []string            `json:"title_suggestions"`
	KeywordClusters  map[string][]string `json:"keyword_clusters"`
	ViewerQuestions  []string            `json:"viewer_questions"`
	RegionalKeywords []string            `json:"regional_keywords"`
}

// NewStrategicInsights 返回各字段均为空值（非 nil）的洞察
func NewStrategicInsights() StrategicInsights {
	return StrategicInsights{
		TrendingTopics:   []string{},
		KeywordGaps:      []string{},
		TitleSuggestions: []string{},
		KeywordClusters:  map[string][]string{},
		ViewerQuestions:  []string{},
		RegionalKeywords: []string{},
	}
}

// ChannelStrategyResponse 频道策略分析结果
type ChannelStrategyResponse struct {
	ChannelID         string            `json:"channel_id"`
	AnalysisID        string            `json:"analysis_id"`
	AnalysisTimestamp time.Time         `json:"analysis_timestamp"`
	Region            string            `json:"region"`
	Language          string            `json:"language"`
	StrategicInsights StrategicInsights `json:"strategic_insights"`
}

// ChannelAnalysisRequest 基于已存储数据的频道分析请求
type ChannelAnalysisRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
	Region    string `json:"region"`
	Language  string `json:"language"`
}

// KeywordAnalysisRequest 直接提供关键词的分析请求
type KeywordAnalysisRequest struct {
	ChannelID string   `json:"channel_id"`
	Keywords  []string `json:"keywords" validate:"required,min=1,dive,required"`
	Region    string   `json:"region"`
	Language  string   `json:"language"`
}

// Normalize 填充默认的地区与语言
func (r *KeywordAnalysisRequest) Normalize() {
	r.Region, r.Language = defaultRegionLanguage(r.Region, r.Language)
	if r.ChannelID == "" {
		r.ChannelID = "keyword-analysis"
	}
}

// Normalize 填充默认的地区与语言
func (r *ChannelAnalysisRequest) Normalize() {
	r.Region, r.Language = defaultRegionLanguage(r.Region, r.Language)
}

func defaultRegionLanguage(region, language string) (string, string) {
	if region == "" {
		region = "global"
	}
	if language == "" {
		language = "en"
	}
	return region, language
}

// EngagementRecord 频道互动数据写入请求
type EngagementRecord struct {
	ChannelID      string         `json:"channel_id" validate:"required"`
	EngagementType string         `json:"engagement_type" validate:"required"`
	Data           map[string]any `json:"data" validate:"required"`
}

// EngagementResponse 单条互动数据查询结果
type EngagementResponse struct {
	ChannelID      string `json:"channel_id"`
	EngagementType string `json:"engagement_type"`
	Data           any    `json:"data"`
	Found          bool   `json:"found"`
}

// EngagementListResponse 频道全部互动数据
type EngagementListResponse struct {
	ChannelID   string         `json:"channel_id"`
	Engagements map[string]any `json:"engagements"`
}

// SaveEngagementResponse 写入互动数据的回执
type SaveEngagementResponse struct {
	Message        string `json:"message"`
	ChannelID      string `json:"channel_id"`
	EngagementType string `json:"engagement_type"`
}

// KeywordAnalysis 已存储的关键词统计结果，仅保留分析需要的字段
type KeywordAnalysis struct {
	TopKeywords         []KeywordStat `json:"top_keywords"`
	TotalVideosAnalyzed int           `json:"total_videos_analyzed"`
}

// KeywordStat 单个关键词统计
type KeywordStat struct {
	Keyword   string  `json:"keyword"`
	Frequency float64 `json:"frequency,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// ParseKeywordAnalysis 从任意 JSON 值中宽松地读取关键词统计。
// 只保留带 keyword 字段的对象条目，数量不是数字时按 0 处理
func ParseKeywordAnalysis(v any) KeywordAnalysis {
	var out KeywordAnalysis
	obj, ok := v.(map[string]any)
	if !ok {
		return out
	}
	out.TotalVideosAnalyzed = int(number(obj["total_videos_analyzed"]))

	entries, _ := obj["top_keywords"].([]any)
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		kw, ok := m["keyword"].(string)
		if !ok {
			continue
		}
		out.TopKeywords = append(out.TopKeywords, KeywordStat{
			Keyword:   kw,
			Frequency: number(m["frequency"]),
			Score:     number(m["score"]),
		})
	}
	return out
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

// Keywords 按顺序返回非空关键词
func (k KeywordAnalysis) Keywords() []string {
	out := make([]string, 0, len(k.TopKeywords))
	for _, s := range k.TopKeywords {
		if s.Keyword != "" {
			out = append(out, s.Keyword)
		}
	}
	return out
}
