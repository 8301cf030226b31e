package insight

import (
	"fmt"
	"strings"
)

// PromptContext 构造提示词所需的上下文
type PromptContext struct {
	// Summary 频道概述，仅 trending_topics 使用
	Summary  string
	Keywords []string
	Region   string
	Language string
}

const promptTail = "Do not include any explanations, examples, or additional text. Only return the JSON object."

// BuildPrompt 为指定类型生成严格格式的提示词
func BuildPrompt(k Kind, pc PromptContext) string {
	return k.desc().prompt(pc)
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func joinHead(items []string, n int) string {
	return strings.Join(head(items, n), ", ")
}

func targeted(task, contextLine string, pc PromptContext, shape string) string {
	return fmt.Sprintf("%s\n\n%s\nTarget region: %s\nTarget language: %s\n\nReturn ONLY a valid JSON object with this exact format:\n%s\n\n%s",
		task, contextLine, pc.Region, pc.Language, shape, promptTail)
}

func trendingTopicsPrompt(pc PromptContext) string {
	return targeted("Generate trending topics for YouTube channel analysis.",
		"Channel content: "+pc.Summary, pc,
		`{"trending_topics": ["topic1", "topic2", "topic3", "topic4", "topic5"]}`)
}

func keywordGapsPrompt(pc PromptContext) string {
	return targeted("Find keyword gaps for YouTube channel analysis.",
		"Channel currently covers: "+joinHead(pc.Keywords, 8), pc,
		`{"keyword_gaps": ["gap1", "gap2", "gap3", "gap4", "gap5"]}`)
}

func titleSuggestionsPrompt(pc PromptContext) string {
	return targeted("Generate YouTube video title suggestions.",
		"Keywords: "+joinHead(pc.Keywords, 5), pc,
		`{"title_suggestions": ["Title 1", "Title 2", "Title 3", "Title 4", "Title 5"]}`)
}

func keywordClustersPrompt(pc PromptContext) string {
	return fmt.Sprintf("Group keywords into content clusters.\n\nKeywords: %s\n\nReturn ONLY a valid JSON object with this exact format:\n%s\n\n%s",
		joinHead(pc.Keywords, 12),
		`{"keyword_clusters": {"series1": ["kw1", "kw2"], "series2": ["kw3", "kw4"], "series3": ["kw5", "kw6"]}}`,
		promptTail)
}

func viewerQuestionsPrompt(pc PromptContext) string {
	return targeted("Generate viewer questions for YouTube content.",
		"Keywords: "+joinHead(pc.Keywords, 6), pc,
		`{"viewer_questions": ["Q1?", "Q2?", "Q3?", "Q4?", "Q5?", "Q6?"]}`)
}

func regionalKeywordsPrompt(pc PromptContext) string {
	return targeted("Generate regional keywords for YouTube content.",
		"Base keywords: "+joinHead(pc.Keywords, 6), pc,
		`{"regional_keywords": ["local1", "local2", "local3", "local4", "local5"]}`)
}
