package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"too large wrapped", fmt.Errorf("evaluate: %w", ErrContractTooLarge), http.StatusBadRequest},
		{"not found", ErrEvaluationNotFound, http.StatusNotFound},
		{"async disabled", ErrAsyncDisabled, http.StatusServiceUnavailable},
		{"read failure", fmt.Errorf("%w: contract2.txt", ErrInputRead), http.StatusInternalServerError},
		{"explicit status wins", WithStatus(http.StatusConflict, ErrEvaluationNotFound), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWithStatus_Unwrap(t *testing.T) {
	err := WithStatus(http.StatusBadRequest, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, ErrInvalidInput.Error(), err.Error())
}

func TestJobError(t *testing.T) {
	assert.True(t, IsRetryable(Retriable("redis down", nil)))
	assert.True(t, IsRetryable(fmt.Errorf("persist: %w", Retriable("db", errors.New("timeout")))))
	assert.False(t, IsRetryable(NonRetriable("bad payload", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))

	err := NonRetriable("load evaluation", ErrEvaluationNotFound)
	assert.ErrorIs(t, err, ErrEvaluationNotFound)
	assert.Equal(t, "load evaluation: evaluation not found", err.Error())
	assert.Equal(t, "bad payload", NonRetriable("bad payload", nil).Error())
}
