package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 日志接口
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

type ctxKey int

const (
	traceIDKey ctxKey = iota
	workerIDKey
	evaluationIDKey
)

// WithTraceID 注入 trace_id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 读取 trace_id
func TraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// WithWorkerID 注入 worker_id
func WithWorkerID(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, workerIDKey, workerID)
}

// WithEvaluationID 注入 evaluation_id
func WithEvaluationID(ctx context.Context, evaluationID string) context.Context {
	return context.WithValue(ctx, evaluationIDKey, evaluationID)
}

// ZapLogger 基于 zap 的实现，格式化消息并附带 Context 中的追踪字段
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger JSON 输出到 stdout，level 取 debug/info/warn/error
func NewZapLogger(level string) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.Sampling = nil

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: l}, nil
}

// NewFromZap 包装已有的 zap.Logger
func NewFromZap(l *zap.Logger) Logger {
	return &ZapLogger{logger: l}
}

func NewNop() Logger {
	return &ZapLogger{logger: zap.NewNop()}
}

// parseLevel 无法识别的级别回落到 info
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || lvl < zapcore.DebugLevel || lvl > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return lvl
}

func contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field
	if v := TraceID(ctx); v != "" {
		fields = append(fields, zap.String("trace_id", v))
	}
	if v, ok := ctx.Value(workerIDKey).(int); ok {
		fields = append(fields, zap.Int("worker_id", v))
	}
	if v, _ := ctx.Value(evaluationIDKey).(string); v != "" {
		fields = append(fields, zap.String("evaluation_id", v))
	}
	return fields
}

func (l *ZapLogger) emit(ctx context.Context, lvl zapcore.Level, format string, args []interface{}) {
	if ce := l.logger.Check(lvl, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write(contextFields(ctx)...)
	}
}

func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.emit(ctx, zapcore.DebugLevel, format, args)
}

func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.emit(ctx, zapcore.InfoLevel, format, args)
}

func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.emit(ctx, zapcore.WarnLevel, format, args)
}

func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.emit(ctx, zapcore.ErrorLevel, format, args)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
