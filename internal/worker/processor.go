package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contractrisk/internal/app/infra/mq/lmstfy"
	"contractrisk/internal/app/pkg/errorx"
	"contractrisk/internal/app/pkg/logger"
)

// Processor 接收任务，调用业务处理函数并根据结果 ACK
type Processor struct {
	cfg        *ProcessorConfig
	source     MessageSource
	handler    Handler
	logger     logger.Logger
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, source MessageSource, handler Handler, log logger.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		source:     source,
		handler:    handler,
		logger:     log,
		shutdownCh: make(chan struct{}),
	}
}

// Start 启动处理协程
func (p *Processor) Start(ctx context.Context, inputChan <-chan *lmstfy.Job) {
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Threads)

	for i := 0; i < p.cfg.Threads; i++ {
		p.wg.Add(1)
		go p.loop(logger.WithWorkerID(ctx, i), i, inputChan)
	}
}

// SignalShutdown 通知 Processor 进入 Drain 模式
func (p *Processor) SignalShutdown() {
	p.logger.Infof(context.Background(), "[Processor] Shutdown signal received")
	close(p.shutdownCh)
}

// Wait 等待所有处理协程退出
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *lmstfy.Job) {
	defer p.wg.Done()
	p.logger.Debugf(ctx, "[Processor-%d] Started", workerID)

	for {
		select {
		case job := <-inputChan:
			p.process(ctx, workerID, job)

		case <-p.shutdownCh:
			// Drain：处理完缓冲区剩余任务再退出
			count := 0
			for {
				select {
				case job := <-inputChan:
					p.process(ctx, workerID, job)
					count++
				default:
					p.logger.Infof(ctx, "[Processor-%d] Drained %d jobs, exiting", workerID, count)
					return
				}
			}
		}
	}
}

func (p *Processor) process(ctx context.Context, workerID int, job *lmstfy.Job) {
	if job == nil {
		return
	}

	start := time.Now()
	procCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := p.handle(procCtx, job)
	duration := time.Since(start)

	switch {
	case err == nil:
		p.logger.Infof(procCtx, "[Processor-%d] Job %s done in %v", workerID, job.ID, duration)
	case errorx.IsRetryable(err):
		p.logger.Warnf(procCtx, "[Processor-%d] Job %s failed, will be redelivered: %v", workerID, job.ID, err)
		return
	default:
		p.logger.Errorf(procCtx, "[Processor-%d] Job %s failed permanently: %v", workerID, job.ID, err)
	}

	if err := p.source.Ack(job.Queue, job.ID); err != nil {
		p.logger.Errorf(procCtx, "[Processor-%d] Ack job %s failed: %v", workerID, job.ID, err)
	}
}

// handle 调用业务处理函数，panic 视为不可重试错误
func (p *Processor) handle(ctx context.Context, job *lmstfy.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errorx.NonRetriable(fmt.Sprintf("handler panic: %v", r), nil)
		}
	}()
	return p.handler(ctx, job)
}
