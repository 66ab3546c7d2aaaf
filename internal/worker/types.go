package worker

import (
	"context"
	"time"

	"contractrisk/internal/app/config"
	"contractrisk/internal/app/infra/mq/lmstfy"
)

// MessageSource 拉取和确认队列消息
type MessageSource interface {
	// Consume 等待 timeout 仍无消息时返回 nil, nil；ttr 内未 Ack 的消息会被重新投递
	Consume(queue string, timeout, ttr time.Duration) (*lmstfy.Job, error)
	Ack(queue, jobID string) error
}

// Handler 处理一条任务；errorx.IsRetryable 为真的错误不 Ack
type Handler func(ctx context.Context, job *lmstfy.Job) error

// SubscriberConfig 拉取端：配置文件中的 subscriber 段加上队列名
type SubscriberConfig struct {
	config.SubscriberConfig
	QueueName string
}

// ProcessorConfig 处理端直接使用配置文件中的 processor 段
type ProcessorConfig = config.ProcessorConfig
