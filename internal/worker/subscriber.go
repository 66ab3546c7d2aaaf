package worker

import (
	"context"
	"sync"
	"time"

	"contractrisk/internal/app/infra/mq/lmstfy"
	"contractrisk/internal/app/pkg/logger"
)

// Subscriber 从消息队列拉取任务，转发给 Processor
type Subscriber struct {
	cfg        *SubscriberConfig
	source     MessageSource
	logger     logger.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSubscriber 创建订阅者
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, log logger.Logger) *Subscriber {
	return &Subscriber{
		cfg:    cfg,
		source: source,
		logger: log,
	}
}

// Start 启动拉取协程
func (s *Subscriber) Start(parentCtx context.Context, inputChan chan<- *lmstfy.Job) {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel

	s.logger.Infof(ctx, "[Subscriber] Starting with %d workers for queue: %s",
		s.cfg.Threads, s.cfg.QueueName)

	for i := 0; i < s.cfg.Threads; i++ {
		s.wg.Add(1)
		go s.loop(logger.WithWorkerID(ctx, i), i, inputChan)
	}
}

// Stop 停止拉取新任务
func (s *Subscriber) Stop() {
	s.logger.Infof(context.Background(), "[Subscriber] Stopping...")
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// Wait 等待所有拉取协程退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] All workers exited")
}

func (s *Subscriber) loop(ctx context.Context, workerID int, inputChan chan<- *lmstfy.Job) {
	defer s.wg.Done()
	s.logger.Debugf(ctx, "[Subscriber-%d] Started", workerID)

	for {
		if ctx.Err() != nil {
			s.logger.Debugf(ctx, "[Subscriber-%d] Context cancelled, exiting", workerID)
			return
		}

		job, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			// 网络抖动不退出，退避后重试
			s.logger.Warnf(ctx, "[Subscriber-%d] Consume error: %v, retrying...", workerID, err)
			if !sleep(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}

		if job == nil {
			continue
		}

		select {
		case inputChan <- job:
			s.logger.Debugf(ctx, "[Subscriber-%d] Job sent: %s", workerID, job.ID)
		case <-ctx.Done():
			// 未 ACK 的任务在 TTR 到期后会重新投递
			s.logger.Warnf(ctx, "[Subscriber-%d] Dropping job due to shutdown: %s", workerID, job.ID)
			return
		}

		if !sleep(ctx, s.cfg.Rate) {
			return
		}
	}
}

// sleep 可被 ctx 打断的等待，返回 false 表示应退出
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
