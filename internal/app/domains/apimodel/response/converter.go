package response

import "contractrisk/internal/app/domains/entity/etevaluation"

// FromEvaluationEntity 从领域对象转换为响应 DTO
func FromEvaluationEntity(evaluation *etevaluation.Evaluation) *EvaluationResponse {
	return &EvaluationResponse{
		ID:             evaluation.ID,
		Status:         string(evaluation.Status),
		ContractDigest: evaluation.ContractDigest,
		ContractChars:  evaluation.ContractChars,
		Report:         evaluation.Report,
		Error:          evaluation.Error,
		CreatedAt:      evaluation.CreatedAt,
		UpdatedAt:      evaluation.UpdatedAt,
	}
}
