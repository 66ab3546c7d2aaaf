package llm

import (
	"context"
	"fmt"

	"contractrisk/internal/app/domains/entity/etrisk"
)

// 支持的提供方
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config 远程分类调用客户端配置
type Config struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
}

// Classifier 与 mdrisk.Classifier 签名一致
type Classifier interface {
	Classify(ctx context.Context, req *etrisk.ClassifyRequest) (string, error)
}

// New 根据提供方创建分类器
func New(ctx context.Context, cfg Config) (Classifier, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClassifier(cfg)
	case ProviderGemini:
		return NewGeminiClassifier(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
