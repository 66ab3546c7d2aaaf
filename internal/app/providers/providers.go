package providers

import (
	"context"
	"fmt"

	"contractrisk/internal/app/config"
	"contractrisk/internal/app/domains/modules/mdevaluation"
	"contractrisk/internal/app/domains/modules/mdrisk"
	"contractrisk/internal/app/domains/repo/rpevaluation"
	"contractrisk/internal/app/domains/services/svevaluation"
	"contractrisk/internal/app/infra/llm"
	"contractrisk/internal/app/infra/mq/lmstfy"
	"contractrisk/internal/app/infra/persistence/mysql"
	"contractrisk/internal/app/infra/persistence/redis"
	"contractrisk/internal/app/pkg/logger"
)

// Components 组装好的应用组件
type Components struct {
	Service *svevaluation.EvaluationService
	Queue   *lmstfy.Client // 未启用异步时为 nil

	cleanups []func()
}

// Close 按创建的逆序释放资源
func (c *Components) Close() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}

// EvaluatorOptions 从配置构造评估参数
func EvaluatorOptions(cfg *config.Config) mdrisk.Options {
	opts := mdrisk.DefaultOptions()
	opts.SystemPrompt = cfg.LLM.SystemPrompt
	opts.MaxTokens = cfg.LLM.MaxTokens
	opts.CallTimeout = cfg.LLM.Timeout
	opts.MaxChars = cfg.Contract.MaxChars
	opts.Parallel = cfg.LLM.Dispatch == config.DispatchParallel
	opts.Concurrency = cfg.LLM.Concurrency
	opts.MaxRetries = cfg.LLM.MaxRetries
	opts.RetryBackoff = cfg.LLM.RetryBackoff
	return opts
}

// NewEvaluator 创建远程分类器和评估器
func NewEvaluator(ctx context.Context, cfg *config.Config, log logger.Logger) (*mdrisk.Evaluator, error) {
	classifier, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create llm classifier failed: %w", err)
	}
	return mdrisk.NewEvaluator(classifier, EvaluatorOptions(cfg), log), nil
}

// Build 组装评估服务；配置了 MySQL 时同时连接 Redis 和 Lmstfy
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	evaluator, err := NewEvaluator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	c := &Components{}
	if !cfg.AsyncEnabled() {
		log.Infof(ctx, "[Providers] mysql not configured, async evaluation disabled")
		c.Service = svevaluation.NewEvaluationService(evaluator, nil, nil, log)
		return c, nil
	}

	db, err := mysql.Open(cfg.MySQL.DSN, cfg.MySQL.AutoMigrate, &rpevaluation.EvaluationPO{})
	if err != nil {
		return nil, err
	}
	c.cleanups = append(c.cleanups, func() {
		if err := mysql.Close(db); err != nil {
			log.Warnf(ctx, "[Providers] close mysql failed: %v", err)
		}
	})

	pubsub, err := redis.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.cleanups = append(c.cleanups, func() {
		if err := pubsub.Close(); err != nil {
			log.Warnf(ctx, "[Providers] close redis failed: %v", err)
		}
	})

	c.Queue = lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)

	repo := rpevaluation.NewEvaluationRepository(db)
	module := mdevaluation.NewEvaluationModule(c.Queue, mdevaluation.NewRedisBus(pubsub), cfg.Lmstfy.Queue)
	c.Service = svevaluation.NewEvaluationService(evaluator, repo, module, log)

	log.Infof(ctx, "[Providers] async evaluation enabled, queue=%s/%s", cfg.Lmstfy.Namespace, cfg.Lmstfy.Queue)
	return c, nil
}
