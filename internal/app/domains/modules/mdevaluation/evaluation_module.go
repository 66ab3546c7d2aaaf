package mdevaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"contractrisk/internal/app/domains/entity/etevaluation"
	"contractrisk/internal/app/infra/persistence/redis"
)

// JobPublisher 任务队列发布端
type JobPublisher interface {
	Publish(queue string, data []byte, delay time.Duration) (string, error)
}

// ResultWaiter 已建立的结果订阅
type ResultWaiter interface {
	Wait(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}

// ResultBus 结果通知通道
type ResultBus interface {
	Listen(ctx context.Context, channel string) (ResultWaiter, error)
	Publish(ctx context.Context, channel string, message string) error
}

// EvaluationModule 评估模块
// 负责任务消息构造、投递和结果通知的频道约定
type EvaluationModule struct {
	publisher JobPublisher
	bus       ResultBus
	queueName string
}

// NewEvaluationModule 创建评估模块
func NewEvaluationModule(publisher JobPublisher, bus ResultBus, queueName string) *EvaluationModule {
	return &EvaluationModule{
		publisher: publisher,
		bus:       bus,
		queueName: queueName,
	}
}

// PublishEvaluateJob 发布合同评估任务
func (m *EvaluationModule) PublishEvaluateJob(ctx context.Context, requestID string, evaluation *etevaluation.Evaluation, contractText string) (string, error) {
	job := NewEvaluateJob(requestID, evaluation.ID, evaluation.ContractDigest, contractText)
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal evaluate job failed: %w", err)
	}
	return m.publisher.Publish(m.queueName, data, 0)
}

// ListenResult 订阅评估结果频道，需在发布任务前调用
func (m *EvaluationModule) ListenResult(ctx context.Context, evaluationID string) (ResultWaiter, error) {
	return m.bus.Listen(ctx, ResultChannel(evaluationID))
}

// NotifyResult 发布评估完成通知
func (m *EvaluationModule) NotifyResult(ctx context.Context, evaluation *etevaluation.Evaluation) error {
	msg, err := json.Marshal(&Notification{
		EvaluationID: evaluation.ID,
		Status:       string(evaluation.Status),
		Timestamp:    time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification failed: %w", err)
	}
	return m.bus.Publish(ctx, ResultChannel(evaluation.ID), string(msg))
}

// redisBus 基于 Redis Pub/Sub 的结果通道
type redisBus struct {
	client *redis.PubSubClient
}

// NewRedisBus 用 Redis Pub/Sub 客户端实现 ResultBus
func NewRedisBus(client *redis.PubSubClient) ResultBus {
	return &redisBus{client: client}
}

func (b *redisBus) Listen(ctx context.Context, channel string) (ResultWaiter, error) {
	sub, err := b.client.Listen(ctx, channel)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *redisBus) Publish(ctx context.Context, channel string, message string) error {
	return b.client.Publish(ctx, channel, message)
}
