package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"contractrisk/internal/app/config"
	"contractrisk/internal/app/pkg/logger"
)

// Manager 管理 Worker 生命周期
type Manager struct {
	ctx        context.Context
	workers    []*Worker
	started    *atomic.Bool
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManager 根据配置创建 Manager
func NewManager(cfg *config.Config, source MessageSource, handler Handler, log logger.Logger) (*Manager, error) {
	if cfg.Lmstfy.Queue == "" {
		return nil, fmt.Errorf("lmstfy queue is required")
	}
	if cfg.Worker.Subscriber.Threads <= 0 || cfg.Worker.Processor.Threads <= 0 {
		return nil, fmt.Errorf("worker threads must be positive")
	}

	ctx := context.Background()
	subCfg := &SubscriberConfig{
		SubscriberConfig: cfg.Worker.Subscriber,
		QueueName:        cfg.Lmstfy.Queue,
	}
	procCfg := cfg.Worker.Processor

	w := NewWorker(ctx, cfg.Worker.Name, subCfg, &procCfg, source, handler, log)
	log.Infof(ctx, "[Manager] Initialized worker %s on queue: %s", w.Name(), subCfg.QueueName)

	return &Manager{
		ctx:        ctx,
		workers:    []*Worker{w},
		started:    atomic.NewBool(false),
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 启动所有 Worker，阻塞到 Shutdown 完成
func (m *Manager) Start() error {
	if !m.started.CAS(false, true) {
		return fmt.Errorf("manager already started")
	}
	m.logger.Infof(m.ctx, "[Manager] Starting %d workers...", len(m.workers))

	for _, w := range m.workers {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
	}

	<-m.shutdownCh
	return nil
}

// Shutdown 优雅退出，可重复调用
func (m *Manager) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	for _, w := range m.workers {
		w.Shutdown()
	}
	m.wg.Wait()

	close(m.shutdownCh)
	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}
