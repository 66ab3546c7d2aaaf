package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contractrisk/internal/app/pkg/logger"
)

// RequestIDHeader 请求追踪头
const RequestIDHeader = "X-Request-ID"

// Logger 注入 trace_id 并记录访问日志
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(RequestIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Header(RequestIDHeader, traceID)

		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		switch {
		case status >= 500:
			log.Errorf(ctx, "[HTTP] %s %s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, latency)
		case status >= 400:
			log.Warnf(ctx, "[HTTP] %s %s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			log.Infof(ctx, "[HTTP] %s %s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}
