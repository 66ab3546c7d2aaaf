package mdevaluation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ActionTypeEvaluate 合同评估任务类型
const ActionTypeEvaluate = "contract_evaluate"

// 任务解析错误
var (
	ErrMalformedJob      = errors.New("malformed evaluate job")
	ErrUnsupportedAction = errors.New("unsupported action type")
)

// EvaluateJob 合同评估任务消息
// API → Worker 的队列消息，合同原文随消息传递，不落库
type EvaluateJob struct {
	Payload EvaluatePayload `json:"payload"`
}

// EvaluatePayload 任务负载
type EvaluatePayload struct {
	Data EvaluateData `json:"data"`
}

// EvaluateData 任务数据层
type EvaluateData struct {
	RequestID  string `json:"request_id"`  // 全链路追踪
	ActionType string `json:"action_type"` // 固定 contract_evaluate
	ID         string `json:"id"`          // 评估 ID

	Data EvaluateBusinessData `json:"data"`
}

// EvaluateBusinessData 评估业务数据
type EvaluateBusinessData struct {
	EvaluationID   string `json:"evaluation_id"`
	ContractDigest string `json:"contract_digest"`
	ContractText   string `json:"contract_text"`
}

// NewEvaluateJob 构造任务消息
func NewEvaluateJob(requestID, evaluationID, digest, contractText string) *EvaluateJob {
	return &EvaluateJob{
		Payload: EvaluatePayload{
			Data: EvaluateData{
				RequestID:  requestID,
				ActionType: ActionTypeEvaluate,
				ID:         evaluationID,
				Data: EvaluateBusinessData{
					EvaluationID:   evaluationID,
					ContractDigest: digest,
					ContractText:   contractText,
				},
			},
		},
	}
}

// DecodeJob 解析并校验队列消息
func DecodeJob(data []byte) (*EvaluateData, error) {
	var job EvaluateJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}

	d := &job.Payload.Data
	if d.ActionType != ActionTypeEvaluate {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, d.ActionType)
	}
	if d.Data.EvaluationID == "" {
		return nil, fmt.Errorf("%w: evaluation_id is empty", ErrMalformedJob)
	}
	return d, nil
}

// Notification 评估完成通知
type Notification struct {
	EvaluationID string `json:"evaluation_id"`
	Status       string `json:"status"` // EVALUATED/FAILED
	Timestamp    int64  `json:"timestamp"`
}

// ResultChannel 评估结果频道命名规则
func ResultChannel(evaluationID string) string {
	return fmt.Sprintf("evaluation:result:%s", evaluationID)
}
