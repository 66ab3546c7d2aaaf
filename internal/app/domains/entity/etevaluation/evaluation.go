package etevaluation

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
	"unicode/utf8"

	"contractrisk/internal/app/domains/entity/etrisk"
)

// 错误定义
var (
	ErrInvalidEvaluationID = errors.New("evaluation ID cannot be empty")
	ErrNilReport           = errors.New("report cannot be nil")
)

// Status 评估状态
type Status string

const (
	StatusEvaluating Status = "EVALUATING"
	StatusEvaluated  Status = "EVALUATED"
	StatusFailed     Status = "FAILED"
)

// Terminal 是否为终态
func (s Status) Terminal() bool {
	return s == StatusEvaluated || s == StatusFailed
}

// Evaluation 异步评估记录（聚合根），不保存合同原文
type Evaluation struct {
	ID             string
	Status         Status
	ContractDigest string // 合同文本 sha256
	ContractChars  int
	Report         *etrisk.Report
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEvaluation 创建评估记录（工厂方法）
func NewEvaluation(id, contractText string) (*Evaluation, error) {
	if id == "" {
		return nil, ErrInvalidEvaluationID
	}

	now := time.Now()
	return &Evaluation{
		ID:             id,
		Status:         StatusEvaluating,
		ContractDigest: Digest(contractText),
		ContractChars:  utf8.RuneCountInString(contractText),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Digest 计算合同文本摘要
func Digest(contractText string) string {
	sum := sha256.Sum256([]byte(contractText))
	return hex.EncodeToString(sum[:])
}

// Complete 写入评估报告（领域行为）
func (e *Evaluation) Complete(report *etrisk.Report) error {
	if report == nil {
		return ErrNilReport
	}
	e.Report = report
	e.Status = StatusEvaluated
	e.Error = ""
	e.UpdatedAt = time.Now()
	return nil
}

// Fail 标记为失败（领域行为）
func (e *Evaluation) Fail(reason string) {
	e.Status = StatusFailed
	e.Error = reason
	e.UpdatedAt = time.Now()
}
