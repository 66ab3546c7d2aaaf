package etrisk

// 消息角色
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage 带角色的对话消息
type ChatMessage struct {
	Role    string
	Content string
}

// ClassifyRequest 远程分类调用请求
type ClassifyRequest struct {
	CriterionID string // 仅用于日志
	Messages    []ChatMessage
	MaxTokens   int
}
