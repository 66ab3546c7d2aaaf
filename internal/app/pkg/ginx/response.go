package ginx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"contractrisk/internal/app/pkg/errorx"
)

// CodeProcessing 异步评估尚未完成
const CodeProcessing = 3001

// Response 统一响应结构
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 元数据
type Meta struct {
	Code    int           `json:"code" example:"200"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 字段级错误
type ErrorDetail struct {
	Path string `json:"path" example:"text"`
	Info string `json:"info" example:"Text is required"`
}

// ProcessingData Smart Wait 超时返回的数据
type ProcessingData struct {
	EvaluationID string `json:"evaluation_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PollURL      string `json:"poll_url" example:"/api/v1/evaluations/550e8400-e29b-41d4-a716-446655440000"`
}

func write(c *gin.Context, status int, meta Meta, data interface{}) {
	c.JSON(status, Response{Meta: meta, Data: data})
}

// Success 200，data 放在信封内
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Meta{Code: http.StatusOK, Message: "OK"}, data)
}

// Processing 202 + code 3001，客户端按 poll_url 轮询
func Processing(c *gin.Context, evaluationID, pollURL string) {
	write(c, http.StatusAccepted,
		Meta{Code: CodeProcessing, Message: "Contract is being evaluated, please poll for results"},
		ProcessingData{EvaluationID: evaluationID, PollURL: pollURL})
}

// Error meta.code 与 HTTP 状态码一致
func Error(c *gin.Context, status int, message string) {
	write(c, status, Meta{Code: status, Message: message}, nil)
}

// FromError 状态码由 errorx.HTTPStatus 决定
func FromError(c *gin.Context, err error) {
	Error(c, errorx.HTTPStatus(err), err.Error())
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// BadRequestWithValidation 绑定失败；validator 错误逐字段展开到 details
func BadRequestWithValidation(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		BadRequest(c, err.Error())
		return
	}

	details := make([]ErrorDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = ErrorDetail{Path: fe.Field(), Info: describe(fe)}
	}
	write(c, http.StatusBadRequest,
		Meta{Code: http.StatusBadRequest, Message: "Validation failed", Details: details}, nil)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
