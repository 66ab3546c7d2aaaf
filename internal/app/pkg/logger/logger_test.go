package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	ctx := WithTraceID(context.Background(), "req-1")
	ctx = WithWorkerID(ctx, 3)
	ctx = WithEvaluationID(ctx, "eval-9")

	l.Infof(ctx, "evaluated %d criteria", 4)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "evaluated 4 criteria", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["trace_id"])
	assert.Equal(t, int64(3), fields["worker_id"])
	assert.Equal(t, "eval-9", fields["evaluation_id"])
}

func TestZapLogger_NoFieldsWithoutContextValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Warnf(context.Background(), "plain")

	require.Len(t, logs.All(), 1)
	assert.Empty(t, logs.All()[0].Context)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
	assert.Equal(t, "abc", TraceID(WithTraceID(context.Background(), "abc")))
}
