package main

import (
	"context"

	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/config"
	"contractrisk/internal/app/pkg/logger"
	"contractrisk/internal/app/providers"
	"contractrisk/internal/app/server/handlers/evaluation"
	"contractrisk/internal/app/server/routers"
)

// App API 服务依赖
type App struct {
	Engine *gin.Engine
	Async  bool
}

// InitializeApp 组装 HTTP 服务，返回的 cleanup 释放连接
func InitializeApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, func(), error) {
	components, err := providers.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	handler := evaluation.NewEvaluationHandler(components.Service, cfg.Contract.FilePath, cfg.Contract.MaxChars, log)
	engine := routers.SetupRoutes(handler, routers.Options{
		ServiceName:    cfg.App.Name,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log)

	return &App{
		Engine: engine,
		Async:  components.Service.AsyncEnabled(),
	}, components.Close, nil
}
