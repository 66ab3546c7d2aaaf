package lmstfy

import (
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"
)

// 发布参数默认值
const (
	DefaultTTL   = time.Hour
	DefaultTries = 3
)

// Job 从队列取出的任务
type Job struct {
	ID    string
	Queue string
	Data  []byte
}

// Client Lmstfy 客户端封装
type Client struct {
	cli       *client.LmstfyClient
	namespace string
	ttl       uint32
	tries     uint16
}

// NewClient 创建 Lmstfy 客户端
func NewClient(host string, port int, namespace, token string) *Client {
	return &Client{
		cli:       client.NewLmstfyClient(host, port, namespace, token),
		namespace: namespace,
		ttl:       uint32(DefaultTTL.Seconds()),
		tries:     DefaultTries,
	}
}

// Publish 发布任务，返回 job ID
func (c *Client) Publish(queue string, data []byte, delay time.Duration) (string, error) {
	jobID, err := c.cli.Publish(queue, data, c.ttl, c.tries, uint32(delay.Seconds()))
	if err != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return jobID, nil
}

// Consume 拉取一个任务，超时未拉到时返回 nil, nil
func (c *Client) Consume(queue string, timeout, ttr time.Duration) (*Job, error) {
	job, err := c.cli.Consume(queue, uint32(ttr.Seconds()), uint32(timeout.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}
	if job == nil {
		return nil, nil
	}

	return &Job{
		ID:    job.ID,
		Queue: job.Queue,
		Data:  job.Data,
	}, nil
}

// Ack 确认任务，任务从队列删除
func (c *Client) Ack(queue, jobID string) error {
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}

// Namespace 返回命名空间
func (c *Client) Namespace() string {
	return c.namespace
}
