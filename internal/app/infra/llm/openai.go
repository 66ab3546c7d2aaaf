package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"contractrisk/internal/app/domains/entity/etrisk"
)

var (
	// ErrNoChoices 响应中没有候选回复
	ErrNoChoices = errors.New("no completion returned")
	// ErrReplyBlocked 模型拒答或回复被内容过滤
	ErrReplyBlocked = errors.New("completion refused or filtered")
)

// OpenAIClassifier OpenAI 兼容的 chat completion 分类器
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier 创建 OpenAI 分类器，baseURL 为空时使用官方地址
func NewOpenAIClassifier(cfg Config) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{}

	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Classify 发送对话消息并返回第一条回复内容
func (c *OpenAIClassifier) Classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: finish_reason=%s", ErrReplyBlocked, choice.FinishReason)
	}
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: %s", ErrReplyBlocked, choice.Message.Refusal)
	}
	return choice.Message.Content, nil
}

func toOpenAIRole(role string) string {
	switch role {
	case etrisk.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
