package mdrisk

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"contractrisk/internal/app/domains/entity/etrisk"
	"contractrisk/internal/app/pkg/errorx"
	"contractrisk/internal/app/pkg/logger"
)

// promptTemplate 分类提示词模板：维度描述 + 合同全文
const promptTemplate = "Analyze the following contract text for %s and determine if it is high risk or low risk: %s"

// Classifier 远程分类调用（任意 chat completion 提供方）
type Classifier interface {
	Classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error)
}

// Options 评估器配置
type Options struct {
	Criteria     []etrisk.Criterion
	SystemPrompt string
	MaxTokens    int
	CallTimeout  time.Duration // 单次远程调用超时
	MaxChars     int           // 合同文本最大长度，<=0 表示不限制
	Parallel     bool          // 并发分发，结果仍按声明顺序
	Concurrency  int
	MaxRetries   uint64 // 0 表示失败即记为 error
	RetryBackoff time.Duration
}

// DefaultOptions 与原有行为一致的默认配置
func DefaultOptions() Options {
	return Options{
		Criteria:     etrisk.DefaultCriteria(),
		SystemPrompt: "You are a strategic reasoner.",
		MaxTokens:    100,
		CallTimeout:  30 * time.Second,
		Concurrency:  1,
		RetryBackoff: time.Second,
	}
}

// Evaluator 合同风险评估器
type Evaluator struct {
	classifier Classifier
	opts       Options
	logger     logger.Logger
}

// NewEvaluator 创建评估器
func NewEvaluator(classifier Classifier, opts Options, log logger.Logger) *Evaluator {
	if len(opts.Criteria) == 0 {
		opts.Criteria = etrisk.DefaultCriteria()
	} else {
		criteria := make([]etrisk.Criterion, len(opts.Criteria))
		copy(criteria, opts.Criteria)
		opts.Criteria = criteria
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Evaluator{
		classifier: classifier,
		opts:       opts,
		logger:     log,
	}
}

// Criteria 当前评估维度（副本）
func (e *Evaluator) Criteria() []etrisk.Criterion {
	out := make([]etrisk.Criterion, len(e.opts.Criteria))
	copy(out, e.opts.Criteria)
	return out
}

// Evaluate 对合同文本逐个维度调用远程分类并汇总
//
// 单个维度的远程调用失败只会记为 error，不会中断其余维度；
// 只有输入本身不可处理时才返回错误。
func (e *Evaluator) Evaluate(ctx context.Context, contractText string) (*etrisk.Report, error) {
	if err := e.Validate(contractText); err != nil {
		return nil, err
	}

	verdicts := make([]etrisk.Verdict, len(e.opts.Criteria))
	if e.opts.Parallel {
		e.evaluateParallel(ctx, contractText, verdicts)
	} else {
		for i, criterion := range e.opts.Criteria {
			verdicts[i] = e.evaluateCriterion(ctx, criterion, contractText)
		}
	}

	risks := make(etrisk.Risks, 0, len(verdicts))
	for i, criterion := range e.opts.Criteria {
		risks = append(risks, etrisk.Assessment{
			CriterionID: criterion.ID,
			Verdict:     verdicts[i],
		})
	}

	report := etrisk.NewReport(risks)
	e.logger.Infof(ctx, "[Evaluator] evaluated %d criteria, overall=%s, errors=%d",
		len(risks), report.OverallRisk, report.ErrorCount())

	return report, nil
}

// Validate 输入检查：空白文本或超长文本直接拒绝
func (e *Evaluator) Validate(contractText string) error {
	if strings.TrimSpace(contractText) == "" {
		return errorx.ErrInvalidInput
	}
	if e.opts.MaxChars > 0 {
		if n := utf8.RuneCountInString(contractText); n > e.opts.MaxChars {
			return fmt.Errorf("%w: %d > %d characters", errorx.ErrContractTooLarge, n, e.opts.MaxChars)
		}
	}
	return nil
}

// evaluateParallel 有界并发分发，每个 goroutine 只写自己的下标
func (e *Evaluator) evaluateParallel(ctx context.Context, contractText string, verdicts []etrisk.Verdict) {
	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)

	for i, criterion := range e.opts.Criteria {
		g.Go(func() error {
			verdicts[i] = e.evaluateCriterion(ctx, criterion, contractText)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Evaluator) evaluateCriterion(ctx context.Context, criterion etrisk.Criterion, contractText string) etrisk.Verdict {
	req := e.buildRequest(criterion, contractText)

	reply, err := e.classify(ctx, req)
	if err != nil {
		e.logger.Warnf(ctx, "[Evaluator] analyze %s failed: %v", criterion.ID, err)
		return etrisk.VerdictError
	}

	verdict := etrisk.ParseVerdict(reply)
	e.logger.Debugf(ctx, "[Evaluator] %s -> %s", criterion.ID, verdict)
	return verdict
}

func (e *Evaluator) buildRequest(criterion etrisk.Criterion, contractText string) *etrisk.ClassifyRequest {
	return &etrisk.ClassifyRequest{
		CriterionID: criterion.ID,
		Messages: []etrisk.ChatMessage{
			{Role: etrisk.RoleSystem, Content: e.opts.SystemPrompt},
			{Role: etrisk.RoleUser, Content: BuildPrompt(criterion, contractText)},
		},
		MaxTokens: e.opts.MaxTokens,
	}
}

// classify 单次远程调用，带超时；MaxRetries > 0 时按固定间隔重试
func (e *Evaluator) classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error) {
	var reply string
	backoff := retry.WithMaxRetries(e.opts.MaxRetries, retry.NewConstant(e.opts.RetryBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx := ctx
		if e.opts.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.opts.CallTimeout)
			defer cancel()
		}

		out, err := e.classifier.Classify(callCtx, req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		reply = out
		return nil
	})

	return reply, err
}

// BuildPrompt 拼接分类提示词
func BuildPrompt(criterion etrisk.Criterion, contractText string) string {
	return fmt.Sprintf(promptTemplate, criterion.Description, contractText)
}
