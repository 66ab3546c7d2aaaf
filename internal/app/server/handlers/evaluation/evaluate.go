package evaluation

import (
	"github.com/gin-gonic/gin"

	"contractrisk/internal/app/pkg/ginx"
)

// EvaluateFile godoc
// @Summary      评估服务端合同文件
// @Description  读取配置的本地合同文件并同步返回四个维度的风险结论
// @Tags         evaluate
// @Produce      json
// @Success      200 {object} ginx.Response{data=etrisk.Report} "评估成功"
// @Failure      500 {object} ginx.Response "文件读取失败"
// @Router       /evaluate [get]
func (h *EvaluationHandler) EvaluateFile(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.evaluationService.EvaluateFile(ctx, h.contractPath)
	if err != nil {
		h.logger.Errorf(ctx, "[EvaluationHandler] evaluate file failed: %v", err)
		ginx.FromError(c, err)
		return
	}

	ginx.Success(c, report)
}

// EvaluateText godoc
// @Summary      评估合同文本
// @Description  同步评估请求体中的合同文本，按维度声明顺序返回结论
// @Tags         evaluate
// @Accept       json
// @Produce      json
// @Param        request body request.EvaluateRequest true "合同文本"
// @Success      200 {object} ginx.Response{data=etrisk.Report} "评估成功"
// @Failure      400 {object} ginx.Response "文本为空或超长"
// @Router       /evaluate [post]
func (h *EvaluationHandler) EvaluateText(c *gin.Context) {
	req, ok := h.bindEvaluateRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	report, err := h.evaluationService.Evaluate(ctx, req.Text)
	if err != nil {
		h.logger.Warnf(ctx, "[EvaluationHandler] evaluate text failed: %v", err)
		ginx.FromError(c, err)
		return
	}

	ginx.Success(c, report)
}
