package mdrisk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractrisk/internal/app/domains/entity/etrisk"
	"contractrisk/internal/app/pkg/errorx"
)

// fakeClassifier 按维度返回预设回复，记录调用顺序
type fakeClassifier struct {
	mu       sync.Mutex
	calls    []*etrisk.ClassifyRequest
	replies  map[string]string
	failures map[string]error
	fallback string
	block    bool // 阻塞直到 ctx 结束
}

func (f *fakeClassifier) Classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err, ok := f.failures[req.CriterionID]; ok {
		return "", err
	}
	if reply, ok := f.replies[req.CriterionID]; ok {
		return reply, nil
	}
	return f.fallback, nil
}

func (f *fakeClassifier) calledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		ids = append(ids, c.CriterionID)
	}
	return ids
}

const sampleContract = "This Agreement sets out the supply of electricity between the parties."

func newTestEvaluator(c Classifier, mutate ...func(*Options)) *Evaluator {
	opts := DefaultOptions()
	opts.CallTimeout = time.Second
	opts.RetryBackoff = time.Millisecond
	for _, m := range mutate {
		m(&opts)
	}
	return NewEvaluator(c, opts, nil)
}

func verdictsOf(r *etrisk.Report) map[string]etrisk.Verdict {
	out := make(map[string]etrisk.Verdict, len(r.Risks))
	for _, a := range r.Risks {
		out[a.CriterionID] = a.Verdict
	}
	return out
}

func TestEvaluate_OneCallPerCriterionInOrder(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			criteria := make([]etrisk.Criterion, 0, n)
			want := make([]string, 0, n)
			for i := 0; i < n; i++ {
				id := fmt.Sprintf("c%d", i)
				criteria = append(criteria, etrisk.Criterion{ID: id, Description: "desc " + id})
				want = append(want, id)
			}

			fc := &fakeClassifier{fallback: "low risk"}
			e := newTestEvaluator(fc, func(o *Options) { o.Criteria = criteria })

			report, err := e.Evaluate(context.Background(), sampleContract)
			require.NoError(t, err)
			assert.Equal(t, want, fc.calledIDs())
			require.Len(t, report.Risks, n)
			for i, a := range report.Risks {
				assert.Equal(t, want[i], a.CriterionID)
			}
		})
	}
}

func TestEvaluate_RequestShape(t *testing.T) {
	fc := &fakeClassifier{fallback: "low risk"}
	e := newTestEvaluator(fc)

	_, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)
	require.Len(t, fc.calls, 4)

	first := fc.calls[0]
	assert.Equal(t, 100, first.MaxTokens)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, etrisk.RoleSystem, first.Messages[0].Role)
	assert.Equal(t, "You are a strategic reasoner.", first.Messages[0].Content)
	assert.Equal(t, etrisk.RoleUser, first.Messages[1].Role)
	assert.Equal(t,
		"Analyze the following contract text for force majeure clause is missing or vague and determine if it is high risk or low risk: "+sampleContract,
		first.Messages[1].Content)
}

func TestEvaluate_AllLowRisk(t *testing.T) {
	fc := &fakeClassifier{fallback: "Low Risk, clause is standard"}
	e := newTestEvaluator(fc)

	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)

	assert.Equal(t, map[string]etrisk.Verdict{
		"forceMajeure": etrisk.VerdictLow,
		"termination":  etrisk.VerdictLow,
		"pricing":      etrisk.VerdictLow,
		"performance":  etrisk.VerdictLow,
	}, verdictsOf(report))
	assert.Equal(t, etrisk.VerdictLow, report.OverallRisk)
}

func TestEvaluate_OnlyPricingHigh(t *testing.T) {
	fc := &fakeClassifier{
		fallback: "low risk",
		replies:  map[string]string{"pricing": "This contract is HIGH RISK overall"},
	}
	e := newTestEvaluator(fc)

	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)

	v, _ := report.Risks.Get("pricing")
	assert.Equal(t, etrisk.VerdictHigh, v)
	assert.Equal(t, etrisk.VerdictHigh, report.OverallRisk)
}

func TestEvaluate_FailureDoesNotAbortRemaining(t *testing.T) {
	fc := &fakeClassifier{
		fallback: "low risk",
		failures: map[string]error{"termination": errors.New("connection reset by peer")},
	}
	e := newTestEvaluator(fc)

	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)

	assert.Equal(t, []string{"forceMajeure", "termination", "pricing", "performance"}, fc.calledIDs())
	assert.Equal(t, map[string]etrisk.Verdict{
		"forceMajeure": etrisk.VerdictLow,
		"termination":  etrisk.VerdictError,
		"pricing":      etrisk.VerdictLow,
		"performance":  etrisk.VerdictLow,
	}, verdictsOf(report))
	assert.Equal(t, etrisk.VerdictLow, report.OverallRisk)
	assert.Equal(t, 1, report.ErrorCount())
}

func TestEvaluate_TimeoutRecordedAsError(t *testing.T) {
	fc := &fakeClassifier{block: true}
	e := newTestEvaluator(fc, func(o *Options) { o.CallTimeout = 10 * time.Millisecond })

	start := time.Now()
	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Len(t, fc.calls, 4)
	for _, a := range report.Risks {
		assert.Equal(t, etrisk.VerdictError, a.Verdict, a.CriterionID)
	}
	assert.Equal(t, etrisk.VerdictLow, report.OverallRisk)
}

func TestEvaluate_NoRetryByDefault(t *testing.T) {
	fc := &fakeClassifier{failures: map[string]error{
		"forceMajeure": errors.New("503"),
		"termination":  errors.New("503"),
		"pricing":      errors.New("503"),
		"performance":  errors.New("503"),
	}}
	e := newTestEvaluator(fc)

	_, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)
	assert.Len(t, fc.calls, 4)
}

// flakyClassifier 前 n 次调用失败
type flakyClassifier struct {
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyClassifier) Classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return "", errors.New("rate limited")
	}
	return "high risk", nil
}

func TestEvaluate_RetriesWhenConfigured(t *testing.T) {
	fc := &flakyClassifier{fails: 2}
	e := newTestEvaluator(fc, func(o *Options) {
		o.Criteria = []etrisk.Criterion{{ID: "pricing", Description: "pricing"}}
		o.MaxRetries = 2
	})

	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)
	assert.Equal(t, 3, fc.calls)
	assert.Equal(t, etrisk.VerdictHigh, report.OverallRisk)
}

func TestEvaluate_RetriesExhausted(t *testing.T) {
	fc := &flakyClassifier{fails: 10}
	e := newTestEvaluator(fc, func(o *Options) {
		o.Criteria = []etrisk.Criterion{{ID: "pricing", Description: "pricing"}}
		o.MaxRetries = 1
	})

	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)
	assert.Equal(t, 2, fc.calls)
	v, _ := report.Risks.Get("pricing")
	assert.Equal(t, etrisk.VerdictError, v)
}

func TestEvaluate_ParallelKeepsDeclarationOrder(t *testing.T) {
	fc := &fakeClassifier{
		fallback: "low risk",
		replies:  map[string]string{"performance": "HIGH RISK."},
		failures: map[string]error{"forceMajeure": errors.New("boom")},
	}
	e := newTestEvaluator(fc, func(o *Options) {
		o.Parallel = true
		o.Concurrency = 2
	})

	report, err := e.Evaluate(context.Background(), sampleContract)
	require.NoError(t, err)

	assert.Len(t, fc.calls, 4)
	ids := make([]string, 0, 4)
	for _, a := range report.Risks {
		ids = append(ids, a.CriterionID)
	}
	assert.Equal(t, []string{"forceMajeure", "termination", "pricing", "performance"}, ids)
	assert.Equal(t, map[string]etrisk.Verdict{
		"forceMajeure": etrisk.VerdictError,
		"termination":  etrisk.VerdictLow,
		"pricing":      etrisk.VerdictLow,
		"performance":  etrisk.VerdictHigh,
	}, verdictsOf(report))
	assert.Equal(t, etrisk.VerdictHigh, report.OverallRisk)
}

func TestEvaluate_InvalidInput(t *testing.T) {
	fc := &fakeClassifier{fallback: "low risk"}
	e := newTestEvaluator(fc)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := e.Evaluate(context.Background(), text)
		assert.ErrorIs(t, err, errorx.ErrInvalidInput)
	}
	assert.Empty(t, fc.calls)
}

func TestEvaluate_TooLarge(t *testing.T) {
	fc := &fakeClassifier{fallback: "low risk"}
	e := newTestEvaluator(fc, func(o *Options) { o.MaxChars = 10 })

	_, err := e.Evaluate(context.Background(), strings.Repeat("合", 11))
	assert.ErrorIs(t, err, errorx.ErrContractTooLarge)
	assert.Empty(t, fc.calls)

	// 按字符而非字节计数
	_, err = e.Evaluate(context.Background(), strings.Repeat("合", 10))
	assert.NoError(t, err)
}

func TestNewEvaluator_CopiesCriteria(t *testing.T) {
	criteria := []etrisk.Criterion{{ID: "a", Description: "a"}}
	e := NewEvaluator(&fakeClassifier{}, Options{Criteria: criteria}, nil)

	criteria[0].ID = "mutated"
	assert.Equal(t, "a", e.Criteria()[0].ID)

	got := e.Criteria()
	got[0].ID = "changed"
	assert.Equal(t, "a", e.Criteria()[0].ID)
}
