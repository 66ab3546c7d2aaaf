package etrisk

// Criterion 风险评估维度
type Criterion struct {
	ID          string // 维度标识，如 forceMajeure
	Description string // 用于拼接分类提示词的自然语言描述
}

// defaultCriteria 固定的四个评估维度，顺序即评估顺序，进程内只读
var defaultCriteria = []Criterion{
	{ID: "forceMajeure", Description: "force majeure clause is missing or vague"},
	{ID: "termination", Description: "termination clause is ambiguous"},
	{ID: "pricing", Description: "unusual pricing structures or lack of benchmarks"},
	{ID: "performance", Description: "undefined performance guarantees or penalties"},
}

// DefaultCriteria 返回默认评估维度的副本
func DefaultCriteria() []Criterion {
	out := make([]Criterion, len(defaultCriteria))
	copy(out, defaultCriteria)
	return out
}
