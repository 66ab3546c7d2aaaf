package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"contractrisk/internal/app/config"
	"contractrisk/internal/app/infra/mq/lmstfy"
	"contractrisk/internal/app/pkg/logger"
	"contractrisk/internal/app/providers"
	"contractrisk/internal/worker"
)

var configPath = flag.String("config", config.DefaultConfigPath, "配置文件路径")

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	if !cfg.AsyncEnabled() {
		log.Fatalf("Worker requires mysql, redis and lmstfy to be configured")
	}

	// 2. 初始化日志
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	zapLogger.Infof(ctx, "Worker starting: app=%s env=%s", cfg.App.Name, cfg.App.Env)

	// 3. 组装评估服务
	components, err := providers.Build(ctx, cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to build components: %v", err)
	}
	defer components.Close()

	handler := func(ctx context.Context, job *lmstfy.Job) error {
		return components.Service.ProcessJob(ctx, job.Data)
	}

	// 4. 创建 Manager
	mgr, err := worker.NewManager(cfg, components.Queue, handler, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- mgr.Start()
	}()

	zapLogger.Infof(ctx, "Worker consuming %s/%s. Press Ctrl+C to shutdown.",
		components.Queue.Namespace(), cfg.Lmstfy.Queue)

	// 5. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLogger.Infof(ctx, "Received signal: %v, shutting down worker...", sig)
		mgr.Shutdown()
		<-errCh
	case err := <-errCh:
		if err != nil {
			zapLogger.Errorf(ctx, "Manager exited: %v", err)
		}
	}

	zapLogger.Infof(ctx, "Worker exited gracefully")
}
