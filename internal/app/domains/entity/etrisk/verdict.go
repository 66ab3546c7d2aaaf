package etrisk

import (
	"fmt"
	"strings"
)

// Verdict 单个维度或整体的评估结论
type Verdict string

const (
	VerdictHigh  Verdict = "high risk"
	VerdictLow   Verdict = "low risk"
	VerdictError Verdict = "error" // 远程调用失败
)

// Valid 是否为已知结论
func (v Verdict) Valid() bool {
	switch v {
	case VerdictHigh, VerdictLow, VerdictError:
		return true
	}
	return false
}

// ParseVerdict 解析模型回复
//
// 匹配规则：去除首尾空白并转为小写后，只要包含子串 "high risk" 即为 high risk，
// 其余一律为 low risk。子串匹配会把 "this is NOT high risk" 判为 high risk。
func ParseVerdict(reply string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(reply))
	if strings.Contains(normalized, string(VerdictHigh)) {
		return VerdictHigh
	}
	return VerdictLow
}

// UnmarshalText 反序列化时校验取值
func (v *Verdict) UnmarshalText(text []byte) error {
	parsed := Verdict(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown verdict %q", string(text))
	}
	*v = parsed
	return nil
}
