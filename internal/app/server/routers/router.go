package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/pkg/logger"
	"contractrisk/internal/app/server/handlers/evaluation"
	"contractrisk/internal/app/server/middlewares"
)

// RootMessage GET / 的固定响应
const RootMessage = "It Work"

// Options 路由选项
type Options struct {
	ServiceName    string
	AllowedOrigins []string
}

// SetupRoutes 配置所有路由；异步评估路由只在服务支持时注册
func SetupRoutes(evaluationHandler *evaluation.EvaluationHandler, opts Options, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.ErrorHandler(log))
	r.Use(middlewares.CORS(opts.AllowedOrigins...))
	r.Use(middlewares.Logger(log))
	r.NoRoute(middlewares.NotFound())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RootMessage)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": opts.ServiceName,
			"async":   evaluationHandler.AsyncEnabled(),
		})
	})

	r.GET("/evaluate", evaluationHandler.EvaluateFile)
	r.POST("/evaluate", evaluationHandler.EvaluateText)

	if evaluationHandler.AsyncEnabled() {
		v1 := r.Group("/api/v1")
		{
			evaluations := v1.Group("/evaluations")
			{
				evaluations.POST("", evaluationHandler.Create)
				evaluations.GET("/:id", evaluationHandler.Get)
			}
		}
	}

	return r
}
