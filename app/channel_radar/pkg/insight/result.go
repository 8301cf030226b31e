package insight

// Result 单个类型的结构化结果
type Result struct {
	Kind     Kind
	Items    []string
	Clusters map[string][]string
	// Fallback 结果来自模板兜底而非模型
	Fallback bool
}

// EmptyResult 返回该类型的空值
func EmptyResult(k Kind) Result {
	if k.Clustered() {
		return Result{Kind: k, Clusters: map[string][]string{}}
	}
	return Result{Kind: k, Items: []string{}}
}

// Empty 是否没有任何内容
func (r Result) Empty() bool {
	if r.Kind.Clustered() {
		for _, items := range r.Clusters {
			if len(items) > 0 {
				return false
			}
		}
		return true
	}
	return len(r.Items) == 0
}

// Payload 返回 {key: value} 形式，便于序列化
func (r Result) Payload() map[string]any {
	if r.Kind.Clustered() {
		clusters := r.Clusters
		if clusters == nil {
			clusters = map[string][]string{}
		}
		return map[string]any{r.Kind.Key(): clusters}
	}
	items := r.Items
	if items == nil {
		items = []string{}
	}
	return map[string]any{r.Kind.Key(): items}
}
