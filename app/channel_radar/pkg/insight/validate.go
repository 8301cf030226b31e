package insight

import "strings"

// 拒答、元评论或代码相关的输出，与任务无关
var denylist = []string{
	"please help me", "pull requests", "improve this code", "will not provide",
	"i cannot", "i'm sorry", "i don't have", "i am not able",
	"json object is created", "json endpoint", "json function",
	"markup", "html", "xml", "javascript", "function",
}

// IsRelevant 判断模型输出是否与期望类型相关
func IsRelevant(raw string, k Kind) bool {
	_, ok := rejectReason(raw, k)
	return ok
}

// rejectReason 返回被拒绝的原因，便于日志
func rejectReason(raw string, k Kind) (string, bool) {
	key := k.Key()
	if !strings.Contains(raw, key) {
		return "missing key", false
	}

	lower := strings.ToLower(raw)
	for _, phrase := range denylist {
		if strings.Contains(lower, phrase) {
			return "denylisted phrase: " + phrase, false
		}
	}

	if !strings.Contains(raw, "{") || !strings.Contains(raw, "}") {
		return "no braces", false
	}

	if !strings.Contains(raw, `"`+key+`"`) && !strings.Contains(raw, `'`+key+`'`) {
		return "key not quoted", false
	}
	return "", true
}
