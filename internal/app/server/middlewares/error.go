package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/pkg/ginx"
	"contractrisk/internal/app/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic 和 c.Error 记录的错误，未写响应时按错误类型输出
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic recovered: %v", r)
				if !c.Writer.Written() {
					ginx.InternalError(c, fmt.Sprintf("internal error: %v", r))
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			log.Errorf(c.Request.Context(), "[HTTP] request failed: %v", err)
			ginx.FromError(c, err)
		}
	}
}

// NotFound 未知路由
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		ginx.Error(c, http.StatusNotFound, "route not found")
	}
}
