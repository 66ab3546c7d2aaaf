package rpevaluation

import (
	"context"

	"contractrisk/internal/app/domains/entity/etevaluation"
)

// EvaluationRepository 评估记录仓储接口
type EvaluationRepository interface {
	// Create 创建评估记录
	Create(ctx context.Context, evaluation *etevaluation.Evaluation) error

	// GetByID 根据ID查询，不存在时返回 errorx.ErrEvaluationNotFound
	GetByID(ctx context.Context, evaluationID string) (*etevaluation.Evaluation, error)

	// UpdateResult 写回终态（EVALUATED 带报告，FAILED 带错误信息）
	UpdateResult(ctx context.Context, evaluation *etevaluation.Evaluation) error
}
