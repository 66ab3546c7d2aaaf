package errorx

import (
	"errors"
	"net/http"
)

// 业务错误
var (
	ErrInvalidInput       = errors.New("invalid input: contract text is empty")
	ErrContractTooLarge   = errors.New("invalid input: contract text exceeds maximum length")
	ErrInputRead          = errors.New("read contract input failed")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrAsyncDisabled      = errors.New("async evaluation is not configured")
)

// StatusError 显式指定 HTTP 状态码的错误
type StatusError struct {
	Status int
	err    error
}

func (e *StatusError) Error() string { return e.err.Error() }

func (e *StatusError) Unwrap() error { return e.err }

// WithStatus 为错误绑定 HTTP 状态码，映射时优先于哨兵错误
func WithStatus(status int, err error) *StatusError {
	return &StatusError{Status: status, err: err}
}

// HTTPStatus 将错误映射为 HTTP 状态码
func HTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Status > 0 {
		return se.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrContractTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrEvaluationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAsyncDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
