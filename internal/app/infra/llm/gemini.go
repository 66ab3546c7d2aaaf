package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"contractrisk/internal/app/domains/entity/etrisk"
)

// GeminiClassifier 基于 Google GenAI 的分类器
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier 创建 Gemini 分类器
func NewGeminiClassifier(ctx context.Context, cfg Config) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Classify system 消息作为 SystemInstruction，其余作为用户内容
func (c *GeminiClassifier) Classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == etrisk.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if len(system) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	if resp == nil {
		return "", ErrNoChoices
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrReplyBlocked, fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoChoices
	}

	// 被拦截的候选通常没有 parts，STOP/MAX_TOKENS 之外的结束原因都视为拦截
	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case "", genai.FinishReasonStop, genai.FinishReasonMaxTokens:
	default:
		return "", fmt.Errorf("%w: finish_reason=%s", ErrReplyBlocked, cand.FinishReason)
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: candidate has no content", ErrReplyBlocked)
	}

	return resp.Text(), nil
}
