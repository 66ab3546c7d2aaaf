package etrisk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Assessment 单个维度的结论
type Assessment struct {
	CriterionID string
	Verdict     Verdict
}

// Risks 按维度声明顺序排列的结论集合，JSON 编码为保持顺序的对象
type Risks []Assessment

// Get 按维度标识查找结论
func (r Risks) Get(criterionID string) (Verdict, bool) {
	for _, a := range r {
		if a.CriterionID == criterionID {
			return a.Verdict, true
		}
	}
	return "", false
}

// MarshalJSON 编码为 {"<criterionId>": "<verdict>", ...}，保持声明顺序
func (r Risks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.CriterionID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.Verdict)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 按出现顺序解码
func (r *Risks) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("risks: expected object, got %v", tok)
	}

	out := make(Risks, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("risks: expected string key, got %v", keyTok)
		}

		var v Verdict
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("risks[%s]: %w", key, err)
		}
		out = append(out, Assessment{CriterionID: key, Verdict: v})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

// Report 一次评估的完整结果
type Report struct {
	Risks       Risks   `json:"risks"`
	OverallRisk Verdict `json:"overallRisk"`
}

// NewReport 根据各维度结论生成报告并计算整体结论
func NewReport(risks Risks) *Report {
	return &Report{
		Risks:       risks,
		OverallRisk: Overall(risks),
	}
}

// Overall 任一维度为 high risk 则整体为 high risk，否则为 low risk。
// error 结论不计入 high risk。
func Overall(risks Risks) Verdict {
	for _, a := range risks {
		if a.Verdict == VerdictHigh {
			return VerdictHigh
		}
	}
	return VerdictLow
}

// ErrorCount 远程调用失败的维度数
func (r *Report) ErrorCount() int {
	n := 0
	for _, a := range r.Risks {
		if a.Verdict == VerdictError {
			n++
		}
	}
	return n
}
