package insight

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/kaptinlin/jsonrepair"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
)

// 提取阶段，用于日志与指标
const (
	StageDirect   = "direct"
	StageFragment = "fragment"
	StageQuoted   = "quoted"
	StageList     = "list"
)

var (
	noneLiteral  = regexp.MustCompile(`\bNone\b`)
	trueLiteral  = regexp.MustCompile(`\bTrue\b`)
	falseLiteral = regexp.MustCompile(`\bFalse\b`)
	quotedItem   = regexp.MustCompile(`"([^"]*)"`)
	bracketList  = regexp.MustCompile(`\[([^\]]*)\]`)
	codeFence    = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")

	// fragmentPatterns 每个字段名一条，匹配包含该字段的花括号片段
	fragmentPatterns = buildFragmentPatterns()
)

func buildFragmentPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(table))
	for i := range table {
		patterns[i] = regexp.MustCompile(`\{[^}]*"` + regexp.QuoteMeta(table[i].key) + `"[^}]*\}`)
	}
	return patterns
}

// Extract 从模型原始输出中恢复期望类型的结构化结果，失败时返回 false
func Extract(raw, prompt string, k Kind) (Result, bool) {
	r, _, ok := extract(raw, prompt, k)
	return r, ok
}

func extract(raw, prompt string, k Kind) (Result, string, bool) {
	text := raw
	if prompt != "" {
		text = strings.ReplaceAll(text, prompt, "")
	}
	text = strings.TrimSpace(codeFence.ReplaceAllString(text, ""))

	if !containsAnyKey(text) {
		logger.Log.Debugf("[%s] 输出中没有任何已知字段", k)
		return Result{}, "", false
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if strings.Count(candidate, "{") == strings.Count(candidate, "}") {
			if r, ok := parseCandidate(candidate, k); ok {
				return r, StageDirect, true
			}
			return repair(candidate, k)
		}
		logger.Log.Debugf("[%s] 花括号不平衡，对全文尝试修复", k)
		return repair(text, k)
	}

	if r, ok := parseCandidate(text, k); ok {
		return r, StageDirect, true
	}
	return repair(text, k)
}

// repair 依次尝试片段匹配、引号条目、方括号列表
func repair(text string, k Kind) (Result, string, bool) {
	for _, kind := range sniffOrder(k) {
		matches := fragmentPatterns[kind].FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		if r, ok := parseCandidate(matches[len(matches)-1], k); ok {
			return r, StageFragment, true
		}
	}

	if containsAnyKey(text) {
		var items []string
		for _, m := range quotedItem.FindAllStringSubmatch(text, -1) {
			if _, isKey := ParseKind(m[1]); isKey {
				continue
			}
			items = append(items, m[1])
		}
		if len(items) > 0 && classify(text, k) == k {
			if r, ok := accept(fromItems(k, items)); ok {
				return r, StageQuoted, true
			}
		}
	}

	if m := bracketList.FindStringSubmatch(text); m != nil {
		var items []string
		for _, part := range strings.Split(m[1], ",") {
			part = strings.Trim(strings.TrimSpace(part), `"'`)
			if part != "" {
				items = append(items, part)
			}
		}
		if len(items) > 0 && classify(text, k) == k {
			if r, ok := accept(fromItems(k, items)); ok {
				return r, StageList, true
			}
		}
	}

	logger.Log.Debugf("[%s] 无法修复输出", k)
	return Result{}, "", false
}

// parseCandidate 依次尝试原文、jsonrepair、字面量规范化、规范化后再 jsonrepair。
// 先修复原文可以保留双引号字符串里的撇号
func parseCandidate(s string, k Kind) (Result, bool) {
	if obj, ok := decodeObject(s); ok {
		return fromObject(obj, k)
	}
	if r, ok := repairObject(s, k); ok {
		return r, true
	}
	normalized := normalizeLiterals(s)
	if obj, ok := decodeObject(normalized); ok {
		return fromObject(obj, k)
	}
	return repairObject(normalized, k)
}

func repairObject(s string, k Kind) (Result, bool) {
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return Result{}, false
	}
	obj, ok := decodeObject(repaired)
	if !ok {
		return Result{}, false
	}
	return fromObject(obj, k)
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func normalizeLiterals(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	s = noneLiteral.ReplaceAllString(s, "null")
	s = trueLiteral.ReplaceAllString(s, "true")
	return falseLiteral.ReplaceAllString(s, "false")
}

func fromObject(obj map[string]any, k Kind) (Result, bool) {
	v, ok := obj[k.Key()]
	if !ok {
		return Result{}, false
	}

	if k.Clustered() {
		switch val := v.(type) {
		case map[string]any:
			clusters := make(map[string][]string, len(val))
			for name, items := range val {
				clusters[name] = toStrings(items)
			}
			return accept(Result{Kind: k, Clusters: clusters})
		case []any:
			return accept(fromItems(k, toStrings(val)))
		}
		return Result{}, false
	}

	return accept(Result{Kind: k, Items: toStrings(v)})
}

// fromItems 由散列条目构造结果，聚类类型拆成两个分组
func fromItems(k Kind, items []string) Result {
	if !k.Clustered() {
		return Result{Kind: k, Items: items}
	}
	return Result{Kind: k, Clusters: map[string][]string{
		"series1": append([]string(nil), head(items, 3)...),
		"series2": append([]string(nil), tail(items, 3, 6)...),
	}}
}

func tail(items []string, from, to int) []string {
	if len(items) <= from {
		return nil
	}
	return head(items[from:], to-from)
}

// accept 规范化后为空的结果视为失败
func accept(r Result) (Result, bool) {
	r = normalize(r)
	if r.Empty() {
		return Result{}, false
	}
	return r, true
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := scalar(item); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{val}
	}
	return nil
}

func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}

func containsAnyKey(text string) bool {
	for _, key := range Keys() {
		if strings.Contains(text, key) {
			return true
		}
	}
	return false
}

// sniffOrder 期望类型优先，其余按固定顺序
func sniffOrder(k Kind) []Kind {
	order := make([]Kind, 0, len(Kinds))
	order = append(order, k)
	for _, other := range Kinds {
		if other != k {
			order = append(order, other)
		}
	}
	return order
}

// classify 按关键词嗅探文本归属的类型，没有命中时返回 -1
func classify(text string, k Kind) Kind {
	lower := strings.ToLower(text)
	for _, kind := range sniffOrder(k) {
		if strings.Contains(lower, table[kind].sniff) {
			return kind
		}
	}
	return -1
}
