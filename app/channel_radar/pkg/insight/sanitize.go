package insight

import "strings"

// Sanitize 去掉与字段名相同的条目以及空白条目，聚类结果同时去掉与分组名相同的条目
func Sanitize(r Result) Result {
	key := r.Kind.Key()
	out := Result{Kind: r.Kind, Fallback: r.Fallback}

	if r.Kind.Clustered() {
		out.Clusters = make(map[string][]string, len(r.Clusters))
		for name, items := range r.Clusters {
			name = strings.TrimSpace(name)
			if name == "" || name == key {
				continue
			}
			cleaned := cleanItems(items, key, name)
			if len(cleaned) == 0 {
				continue
			}
			out.Clusters[name] = cleaned
		}
		return out
	}

	out.Items = cleanItems(r.Items, key)
	return out
}

func cleanItems(items []string, echoes ...string) []string {
	out := make([]string, 0, len(items))
next:
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		for _, e := range echoes {
			if item == e {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Truncate 按类型上限截断列表
func Truncate(r Result) Result {
	if r.Kind.Clustered() {
		return r
	}
	if limit := r.Kind.MaxItems(); limit > 0 && len(r.Items) > limit {
		r.Items = append([]string(nil), r.Items[:limit]...)
	}
	return r
}

// finalizeQuestions 丢弃过短的问题，并补全问号
func finalizeQuestions(items []string) []string {
	out := make([]string, 0, len(items))
	for _, q := range items {
		if len(q) <= 5 {
			continue
		}
		if !strings.HasSuffix(q, "?") {
			q += "?"
		}
		out = append(out, q)
	}
	return out
}

// normalize 清洗、类型后处理并截断
func normalize(r Result) Result {
	r = Sanitize(r)
	if fn := r.Kind.desc().finalize; fn != nil {
		r.Items = fn(r.Items)
	}
	return Truncate(r)
}
