package insight

import "fmt"

// Kind 洞察类型
type Kind int

const (
	TrendingTopics Kind = iota
	KeywordGaps
	TitleSuggestions
	KeywordClusters
	ViewerQuestions
	RegionalKeywords
)

// Kinds 汇总结果的固定顺序
var Kinds = []Kind{
	TrendingTopics,
	KeywordGaps,
	TitleSuggestions,
	KeywordClusters,
	ViewerQuestions,
	RegionalKeywords,
}

// descriptor 单个洞察类型的全部差异点：提示词、解析、兜底与生成参数
type descriptor struct {
	key         string
	sniff       string
	maxItems    int
	maxTokens   int
	temperature float64
	clustered   bool
	prompt      func(PromptContext) string
	fallback    func(keywords []string) Result
	finalize    func(items []string) []string
}

var table = [...]descriptor{
	TrendingTopics: {
		key: "trending_topics", sniff: "trend", maxItems: 5,
		maxTokens: 150, temperature: 0.8,
		prompt: trendingTopicsPrompt, fallback: trendingTopicsFallback,
	},
	KeywordGaps: {
		key: "keyword_gaps", sniff: "gap", maxItems: 5,
		maxTokens: 150, temperature: 0.7,
		prompt: keywordGapsPrompt, fallback: keywordGapsFallback,
	},
	TitleSuggestions: {
		key: "title_suggestions", sniff: "title", maxItems: 5,
		maxTokens: 200, temperature: 0.9,
		prompt: titleSuggestionsPrompt, fallback: titleSuggestionsFallback,
	},
	KeywordClusters: {
		key: "keyword_clusters", sniff: "cluster",
		maxTokens: 180, temperature: 0.6, clustered: true,
		prompt: keywordClustersPrompt, fallback: keywordClustersFallback,
	},
	ViewerQuestions: {
		key: "viewer_questions", sniff: "question", maxItems: 6,
		maxTokens: 150, temperature: 0.7,
		prompt: viewerQuestionsPrompt, fallback: viewerQuestionsFallback,
		finalize: finalizeQuestions,
	},
	RegionalKeywords: {
		key: "regional_keywords", sniff: "regional", maxItems: 5,
		maxTokens: 120, temperature: 0.8,
		prompt: regionalKeywordsPrompt, fallback: regionalKeywordsFallback,
	},
}

func (k Kind) desc() *descriptor {
	if k < 0 || int(k) >= len(table) {
		panic(fmt.Sprintf("insight: unknown kind %d", int(k)))
	}
	return &table[k]
}

// Valid 是否为已知类型
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(table)
}

// Key 返回该类型在 JSON 中的字段名
func (k Kind) Key() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return table[k].key
}

func (k Kind) String() string { return k.Key() }

// MaxItems 列表类结果的最大条数，聚类类型返回 0
func (k Kind) MaxItems() int { return k.desc().maxItems }

// MaxTokens 生成该类型时的 num_predict
func (k Kind) MaxTokens() int { return k.desc().maxTokens }

// Temperature 生成该类型时的采样温度
func (k Kind) Temperature() float64 { return k.desc().temperature }

// Clustered 结果是否为 分组名 -> 列表 的映射
func (k Kind) Clustered() bool { return k.desc().clustered }

// ParseKind 根据字段名解析类型
func ParseKind(key string) (Kind, bool) {
	for _, k := range Kinds {
		if table[k].key == key {
			return k, true
		}
	}
	return 0, false
}

// Keys 所有已知字段名，按固定顺序
func Keys() []string {
	keys := make([]string, len(Kinds))
	for i, k := range Kinds {
		keys[i] = table[k].key
	}
	return keys
}
