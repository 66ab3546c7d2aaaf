package request

// EvaluateRequest 合同评估请求
type EvaluateRequest struct {
	Text string `json:"text" binding:"required" example:"This Agreement is entered into by and between..."`
}
