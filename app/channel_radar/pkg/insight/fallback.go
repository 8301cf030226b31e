package insight

import "fmt"

// Fallback 生成确定性的模板结果，不依赖模型
func Fallback(k Kind, keywords []string) Result {
	r := k.desc().fallback(cleanItems(keywords))
	r.Kind = k
	r.Fallback = true
	return normalize(r)
}

// expand 对每个关键词套用模板，再截断到 limit 条
func expand(keywords []string, perKeyword, limit int, templates ...string) []string {
	out := make([]string, 0, limit)
	for _, kw := range head(keywords, perKeyword) {
		for _, tpl := range templates {
			out = append(out, fmt.Sprintf(tpl, kw))
		}
	}
	return head(out, limit)
}

func trendingTopicsFallback(keywords []string) Result {
	if len(keywords) == 0 {
		return Result{Items: []string{"AI Trends", "Digital Transformation", "Remote Work", "Sustainability", "Health Tech"}}
	}
	return Result{Items: expand(keywords, 5, 5, "%s Trends", "Latest %s News", "%s Innovation")}
}

func keywordGapsFallback(keywords []string) Result {
	if len(keywords) == 0 {
		return Result{Items: []string{"Emerging Technology", "Industry Insights", "Best Practices", "Case Studies", "Expert Tips"}}
	}
	return Result{Items: expand(keywords, 5, 5, "Advanced %s", "%s Best Practices", "%s Case Studies")}
}

func titleSuggestionsFallback(keywords []string) Result {
	if len(keywords) == 0 {
		return Result{Items: []string{"Top 5 Trends in 2024", "How to Master This Skill", "The Ultimate Guide", "Secrets Revealed", "What You Need to Know"}}
	}
	return Result{Items: expand(keywords, 5, 5, "Top 5 %s Tips", "How to Master %s", "The Ultimate %s Guide")}
}

func keywordClustersFallback(keywords []string) Result {
	if len(keywords) == 0 {
		return Result{Clusters: map[string][]string{
			"Beginner": {"Basics", "Introduction", "Getting Started"},
			"Advanced": {"Expert Tips", "Advanced Techniques", "Pro Strategies"},
		}}
	}
	clusters := make(map[string][]string)
	for i, kw := range head(keywords, 6) {
		clusters[fmt.Sprintf("series%d", i+1)] = []string{kw, kw + " tips", kw + " guide"}
	}
	return Result{Clusters: clusters}
}

func viewerQuestionsFallback(keywords []string) Result {
	if len(keywords) == 0 {
		return Result{Items: []string{
			"How do I get started?", "What are the best practices?", "How can I improve?",
			"What should I avoid?", "What are the latest trends?", "How do I succeed?",
		}}
	}
	return Result{Items: expand(keywords, 6, 6,
		"How do I get started with %s?", "What are the best %s practices?", "How can I improve my %s skills?")}
}

func regionalKeywordsFallback(keywords []string) Result {
	if len(keywords) == 0 {
		return Result{Items: []string{"Local Trends", "Regional Insights", "Cultural Relevance", "Local Best Practices", "Regional Success Stories"}}
	}
	return Result{Items: expand(keywords, 5, 5, "Local %s", "%s in your region", "Regional %s trends")}
}
