package evaluation

import (
	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/domains/apimodel/response"
	"contractrisk/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      获取评估详情
// @Description  创建评估返回 code=3001 时，通过此接口轮询结果
// @Tags         evaluations
// @Produce      json
// @Param        id path string true "评估ID（UUID）"
// @Success      200 {object} ginx.Response{data=response.EvaluationResponse} "查询成功"
// @Failure      404 {object} ginx.Response "评估不存在"
// @Router       /api/v1/evaluations/{id} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	evaluationID := c.Param("id")
	if evaluationID == "" {
		ginx.BadRequest(c, "evaluation id required")
		return
	}

	ctx := c.Request.Context()
	evaluation, err := h.evaluationService.GetEvaluation(ctx, evaluationID)
	if err != nil {
		h.logger.Warnf(ctx, "[EvaluationHandler] get evaluation failed: %v", err)
		ginx.FromError(c, err)
		return
	}

	ginx.Success(c, response.FromEvaluationEntity(evaluation))
}
