package evaluation

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/domains/apimodel/request"
	"contractrisk/internal/app/domains/services/svevaluation"
	"contractrisk/internal/app/pkg/errorx"
	"contractrisk/internal/app/pkg/ginx"
	"contractrisk/internal/app/pkg/logger"
)

// bodySlack JSON 包装和字段名的额外字节
const bodySlack = 4 << 10

// EvaluationHandler 合同评估 HTTP 处理器
type EvaluationHandler struct {
	evaluationService *svevaluation.EvaluationService
	contractPath      string
	maxBodyBytes      int64
	logger            logger.Logger
}

// NewEvaluationHandler 创建评估处理器
// contractPath 为 GET /evaluate 读取的文件；maxChars > 0 时按字符上限限制请求体大小
func NewEvaluationHandler(evaluationService *svevaluation.EvaluationService, contractPath string, maxChars int, log logger.Logger) *EvaluationHandler {
	if log == nil {
		log = logger.NewNop()
	}
	var maxBody int64
	if maxChars > 0 {
		// 单个字符 JSON 转义后最多 6 字节（\uXXXX）
		maxBody = int64(maxChars)*6 + bodySlack
	}
	return &EvaluationHandler{
		evaluationService: evaluationService,
		contractPath:      contractPath,
		maxBodyBytes:      maxBody,
		logger:            log,
	}
}

// AsyncEnabled 是否注册异步评估路由
func (h *EvaluationHandler) AsyncEnabled() bool {
	return h.evaluationService.AsyncEnabled()
}

// bindEvaluateRequest 限制读取长度后绑定请求体，失败时已写出 400
func (h *EvaluationHandler) bindEvaluateRequest(c *gin.Context) (*request.EvaluateRequest, bool) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var req request.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ginx.FromError(c, fmt.Errorf("%w: request body exceeds %d bytes", errorx.ErrContractTooLarge, tooLarge.Limit))
			return nil, false
		}
		ginx.BadRequestWithValidation(c, err)
		return nil, false
	}
	return &req, true
}
