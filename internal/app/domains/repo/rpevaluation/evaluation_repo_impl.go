package rpevaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"contractrisk/internal/app/domains/entity/etevaluation"
	"contractrisk/internal/app/domains/entity/etrisk"
	"contractrisk/internal/app/pkg/errorx"
)

// EvaluationPO 评估记录表结构
type EvaluationPO struct {
	ID             string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	Status         string         `gorm:"column:status;type:varchar(16);not null;default:'EVALUATING';index:idx_status"`
	ContractDigest string         `gorm:"column:contract_digest;type:char(64);not null;index:idx_digest"`
	ContractChars  int            `gorm:"column:contract_chars;not null"`
	Report         datatypes.JSON `gorm:"column:report;type:json"`
	ErrorMessage   string         `gorm:"column:error_message;type:varchar(1024)"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (EvaluationPO) TableName() string {
	return "contract_evaluations"
}

// EvaluationRepositoryImpl 评估记录仓储实现（MySQL）
type EvaluationRepositoryImpl struct {
	db *gorm.DB
}

// NewEvaluationRepository 创建评估记录仓储
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &EvaluationRepositoryImpl{db: db}
}

// Create 创建评估记录
func (r *EvaluationRepositoryImpl) Create(ctx context.Context, evaluation *etevaluation.Evaluation) error {
	po, err := toGormModel(evaluation)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(po).Error
}

// GetByID 根据ID查询评估记录
func (r *EvaluationRepositoryImpl) GetByID(ctx context.Context, evaluationID string) (*etevaluation.Evaluation, error) {
	var po EvaluationPO
	err := r.db.WithContext(ctx).Where("id = ?", evaluationID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%s", errorx.ErrEvaluationNotFound, evaluationID)
		}
		return nil, err
	}
	return toDomainModel(&po)
}

// UpdateResult 写回状态、报告和错误信息
func (r *EvaluationRepositoryImpl) UpdateResult(ctx context.Context, evaluation *etevaluation.Evaluation) error {
	updates := map[string]interface{}{
		"status":        string(evaluation.Status),
		"error_message": evaluation.Error,
		"updated_at":    time.Now(),
	}

	if evaluation.Report != nil {
		reportJSON, err := json.Marshal(evaluation.Report)
		if err != nil {
			return err
		}
		updates["report"] = datatypes.JSON(reportJSON)
	}

	result := r.db.WithContext(ctx).
		Model(&EvaluationPO{}).
		Where("id = ?", evaluation.ID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id=%s", errorx.ErrEvaluationNotFound, evaluation.ID)
	}
	return nil
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(evaluation *etevaluation.Evaluation) (*EvaluationPO, error) {
	po := &EvaluationPO{
		ID:             evaluation.ID,
		Status:         string(evaluation.Status),
		ContractDigest: evaluation.ContractDigest,
		ContractChars:  evaluation.ContractChars,
		ErrorMessage:   evaluation.Error,
		CreatedAt:      evaluation.CreatedAt,
		UpdatedAt:      evaluation.UpdatedAt,
	}

	if evaluation.Report != nil {
		reportJSON, err := json.Marshal(evaluation.Report)
		if err != nil {
			return nil, err
		}
		po.Report = reportJSON
	}

	return po, nil
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *EvaluationPO) (*etevaluation.Evaluation, error) {
	evaluation := &etevaluation.Evaluation{
		ID:             po.ID,
		Status:         etevaluation.Status(po.Status),
		ContractDigest: po.ContractDigest,
		ContractChars:  po.ContractChars,
		Error:          po.ErrorMessage,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
	}

	if len(po.Report) > 0 && string(po.Report) != "null" {
		var report etrisk.Report
		if err := json.Unmarshal(po.Report, &report); err != nil {
			return nil, fmt.Errorf("decode report failed: %w", err)
		}
		evaluation.Report = &report
	}

	return evaluation, nil
}
