package worker

import (
	"context"
	"sync"

	"contractrisk/internal/app/infra/mq/lmstfy"
	"contractrisk/internal/app/pkg/logger"
)

// Worker 由一组 Subscriber 和 Processor 组成
type Worker struct {
	ctx        context.Context
	name       string
	subscriber *Subscriber
	processor  *Processor
	inputChan  chan *lmstfy.Job
	shutdownCh chan struct{}
	logger     logger.Logger

	mu      sync.Mutex
	stopped bool
}

// NewWorker 创建 Worker
func NewWorker(
	ctx context.Context,
	name string,
	subscriberCfg *SubscriberConfig,
	processorCfg *ProcessorConfig,
	source MessageSource,
	handler Handler,
	log logger.Logger,
) *Worker {
	return &Worker{
		ctx:        ctx,
		name:       name,
		subscriber: NewSubscriber(subscriberCfg, source, log),
		processor:  NewProcessor(processorCfg, source, handler, log),
		inputChan:  make(chan *lmstfy.Job, processorCfg.BufferSize),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
}

// Start 启动 Worker，阻塞到 Shutdown 完成
func (w *Worker) Start() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.processor.Start(w.ctx, w.inputChan)
	w.subscriber.Start(w.ctx, w.inputChan)
	w.mu.Unlock()

	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	<-w.shutdownCh
}

// Shutdown 优雅退出
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	// 1. 停止拉取新任务
	w.subscriber.Stop()
	// 2. 等待 Subscriber 完全退出
	w.subscriber.Wait()
	// 3. 通知 Processor 进入 Drain 模式
	w.processor.SignalShutdown()
	// 4. 等待剩余任务处理完
	w.processor.Wait()

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// Name Worker 名称
func (w *Worker) Name() string {
	return w.name
}
