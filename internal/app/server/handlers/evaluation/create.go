package evaluation

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/domains/apimodel/response"
	"contractrisk/internal/app/pkg/errorx"
	"contractrisk/internal/app/pkg/ginx"
)

// Create godoc
// @Summary      创建异步评估
// @Description  落库并投递评估任务；wait > 0 时在该时间内等待结果（Smart Wait）
// @Description  超时未完成返回 code=3001 和轮询地址
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        wait    query int false "等待秒数，最大 60，非法值返回 400"
// @Param        request body request.EvaluateRequest true "合同文本"
// @Success      200 {object} ginx.Response{data=response.EvaluationResponse} "评估完成"
// @Success      202 {object} ginx.Response{data=ginx.ProcessingData} "评估中"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      503 {object} ginx.Response "未配置异步评估"
// @Router       /api/v1/evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		w, err := strconv.Atoi(waitStr)
		if err != nil || w < 0 {
			ginx.FromError(c, errorx.WithStatus(http.StatusBadRequest, fmt.Errorf("invalid wait: %q", waitStr)))
			return
		}
		waitSeconds = w
	}

	req, ok := h.bindEvaluateRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	evaluation, err := h.evaluationService.CreateEvaluation(ctx, req.Text, time.Duration(waitSeconds)*time.Second)
	if err != nil {
		h.logger.Errorf(ctx, "[EvaluationHandler] create evaluation failed: %v", err)
		ginx.FromError(c, err)
		return
	}

	if !evaluation.Status.Terminal() {
		ginx.Processing(c, evaluation.ID, PollURL(evaluation.ID))
		return
	}
	ginx.Success(c, response.FromEvaluationEntity(evaluation))
}

// PollURL 评估结果轮询地址
func PollURL(evaluationID string) string {
	return fmt.Sprintf("/api/v1/evaluations/%s", evaluationID)
}
