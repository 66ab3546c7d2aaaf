package response

import (
	"time"

	"contractrisk/internal/app/domains/entity/etrisk"
)

// EvaluationResponse 异步评估记录（DTO）
type EvaluationResponse struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"`
	ContractDigest string         `json:"contract_digest"`
	ContractChars  int            `json:"contract_chars"`
	Report         *etrisk.Report `json:"report,omitempty"`
	Error          string         `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
