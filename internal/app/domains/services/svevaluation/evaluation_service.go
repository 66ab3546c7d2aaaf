package svevaluation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"contractrisk/internal/app/domains/entity/etevaluation"
	"contractrisk/internal/app/domains/entity/etrisk"
	"contractrisk/internal/app/domains/modules/mdevaluation"
	"contractrisk/internal/app/domains/repo/rpevaluation"
	"contractrisk/internal/app/pkg/errorx"
	"contractrisk/internal/app/pkg/logger"
)

// MaxWait Smart Wait 最长等待时间
const MaxWait = 60 * time.Second

// RiskEvaluator 合同风险评估能力
type RiskEvaluator interface {
	Validate(contractText string) error
	Evaluate(ctx context.Context, contractText string) (*etrisk.Report, error)
}

// EvaluationService 合同评估服务，负责同步评估和异步任务编排
type EvaluationService struct {
	evaluator RiskEvaluator
	repo      rpevaluation.EvaluationRepository
	module    *mdevaluation.EvaluationModule
	logger    logger.Logger
}

// NewEvaluationService 创建评估服务；repo 和 module 为 nil 时只提供同步评估
func NewEvaluationService(
	evaluator RiskEvaluator,
	repo rpevaluation.EvaluationRepository,
	module *mdevaluation.EvaluationModule,
	log logger.Logger,
) *EvaluationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &EvaluationService{
		evaluator: evaluator,
		repo:      repo,
		module:    module,
		logger:    log,
	}
}

// AsyncEnabled 是否支持异步评估
func (s *EvaluationService) AsyncEnabled() bool {
	return s.repo != nil && s.module != nil
}

// Evaluate 同步评估合同文本
func (s *EvaluationService) Evaluate(ctx context.Context, contractText string) (*etrisk.Report, error) {
	return s.evaluator.Evaluate(ctx, contractText)
}

// EvaluateFile 读取本地合同文件后同步评估
func (s *EvaluationService) EvaluateFile(ctx context.Context, path string) (*etrisk.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Errorf(ctx, "[EvaluationService] read contract file failed: path=%s, error=%v", path, err)
		return nil, fmt.Errorf("%w: %s: %v", errorx.ErrInputRead, path, err)
	}
	// 服务端文件为空属于读取失败，不是客户端输入错误
	if strings.TrimSpace(string(data)) == "" {
		s.logger.Errorf(ctx, "[EvaluationService] contract file is empty: path=%s", path)
		return nil, fmt.Errorf("%w: %s is empty", errorx.ErrInputRead, path)
	}
	return s.evaluator.Evaluate(ctx, string(data))
}

// CreateEvaluation 创建异步评估（完整业务流程）
// 1. 校验输入
// 2. 创建记录并落库
// 3. 订阅结果频道（wait > 0）
// 4. 发布评估任务
// 5. Smart Wait，结束后重新读取记录
func (s *EvaluationService) CreateEvaluation(ctx context.Context, contractText string, wait time.Duration) (*etevaluation.Evaluation, error) {
	if !s.AsyncEnabled() {
		return nil, errorx.ErrAsyncDisabled
	}
	if err := s.evaluator.Validate(contractText); err != nil {
		return nil, err
	}

	evaluation, err := etevaluation.NewEvaluation(uuid.New().String(), contractText)
	if err != nil {
		return nil, fmt.Errorf("create evaluation entity failed: %w", err)
	}
	ctx = logger.WithEvaluationID(ctx, evaluation.ID)

	if err := s.repo.Create(ctx, evaluation); err != nil {
		return nil, fmt.Errorf("save evaluation failed: %w", err)
	}

	if wait > MaxWait {
		wait = MaxWait
	}

	var waiter mdevaluation.ResultWaiter
	if wait > 0 {
		waiter, err = s.module.ListenResult(ctx, evaluation.ID)
		if err != nil {
			s.logger.Warnf(ctx, "[EvaluationService] listen result failed, fall back to polling: %v", err)
			waiter = nil
		} else {
			defer waiter.Close()
		}
	}

	requestID := logger.TraceID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	jobID, err := s.module.PublishEvaluateJob(ctx, requestID, evaluation, contractText)
	if err != nil {
		s.logger.Errorf(ctx, "[EvaluationService] publish evaluate job failed: %v", err)
		evaluation.Fail("publish evaluate job failed")
		if uerr := s.repo.UpdateResult(ctx, evaluation); uerr != nil {
			s.logger.Errorf(ctx, "[EvaluationService] mark evaluation failed: %v", uerr)
		}
		return nil, fmt.Errorf("publish evaluate job failed: %w", err)
	}
	s.logger.Infof(ctx, "[EvaluationService] evaluate job published: job_id=%s", jobID)

	if waiter == nil {
		return evaluation, nil
	}

	if _, err := waiter.Wait(ctx, wait); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warnf(ctx, "[EvaluationService] wait for result failed: %v", err)
		}
	}

	// 通知只作为唤醒信号，结果以库中记录为准
	latest, err := s.repo.GetByID(ctx, evaluation.ID)
	if err != nil {
		s.logger.Warnf(ctx, "[EvaluationService] reload evaluation failed: %v", err)
		return evaluation, nil
	}
	return latest, nil
}

// GetEvaluation 查询评估记录
func (s *EvaluationService) GetEvaluation(ctx context.Context, evaluationID string) (*etevaluation.Evaluation, error) {
	if !s.AsyncEnabled() {
		return nil, errorx.ErrAsyncDisabled
	}
	return s.repo.GetByID(ctx, evaluationID)
}

// ProcessJob 处理队列中的评估任务
// 返回 nil 表示任务已完成；errorx.JobError 标记是否需要重新投递
func (s *EvaluationService) ProcessJob(ctx context.Context, data []byte) error {
	if !s.AsyncEnabled() {
		return errorx.NonRetriable("process job", errorx.ErrAsyncDisabled)
	}

	job, err := mdevaluation.DecodeJob(data)
	if err != nil {
		return errorx.NonRetriable("decode job", err)
	}

	ctx = logger.WithEvaluationID(ctx, job.Data.EvaluationID)
	if job.RequestID != "" && logger.TraceID(ctx) == "" {
		ctx = logger.WithTraceID(ctx, job.RequestID)
	}

	evaluation, err := s.repo.GetByID(ctx, job.Data.EvaluationID)
	if err != nil {
		if errors.Is(err, errorx.ErrEvaluationNotFound) {
			return errorx.NonRetriable("load evaluation", err)
		}
		return errorx.Retriable("load evaluation", err)
	}

	// 重复投递：已有终态则只补发通知
	if evaluation.Status.Terminal() {
		s.logger.Infof(ctx, "[EvaluationService] evaluation already %s, skip", evaluation.Status)
		s.notify(ctx, evaluation)
		return nil
	}

	// 任务文本必须与落库时的摘要一致
	if etevaluation.Digest(job.Data.ContractText) != evaluation.ContractDigest {
		evaluation.Fail("contract digest mismatch")
		return s.finish(ctx, evaluation, errorx.NonRetriable("contract digest mismatch", nil))
	}

	report, err := s.evaluator.Evaluate(ctx, job.Data.ContractText)
	if err != nil {
		if ctx.Err() != nil {
			return errorx.Retriable("evaluation interrupted", err)
		}
		evaluation.Fail(err.Error())
		return s.finish(ctx, evaluation, errorx.NonRetriable("evaluate contract", err))
	}

	if err := evaluation.Complete(report); err != nil {
		return errorx.NonRetriable("complete evaluation", err)
	}
	return s.finish(ctx, evaluation, nil)
}

// finish 持久化终态并通知等待方，持久化失败时要求重新投递
func (s *EvaluationService) finish(ctx context.Context, evaluation *etevaluation.Evaluation, jobErr error) error {
	if err := s.repo.UpdateResult(ctx, evaluation); err != nil {
		s.logger.Errorf(ctx, "[EvaluationService] persist result failed: %v", err)
		return errorx.Retriable("persist evaluation result", err)
	}

	s.logger.Infof(ctx, "[EvaluationService] evaluation finished: status=%s", evaluation.Status)
	s.notify(ctx, evaluation)
	return jobErr
}

func (s *EvaluationService) notify(ctx context.Context, evaluation *etevaluation.Evaluation) {
	if err := s.module.NotifyResult(ctx, evaluation); err != nil {
		s.logger.Warnf(ctx, "[EvaluationService] notify result failed: %v", err)
	}
}
