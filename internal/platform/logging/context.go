package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the request logger stored by RequestLogger, or the process logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(loggerKey{}).(*zap.Logger); l != nil {
			return l
		}
	}
	return Logger()
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.InfoLevel, msg, nil, fields)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.WarnLevel, msg, nil, fields)
}

// LogError logs at error level; a non-nil err is attached as the "error" field.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	write(ctx, zapcore.ErrorLevel, msg, err, fields)
}

func write(ctx context.Context, lvl zapcore.Level, msg string, err error, fields []zap.Field) {
	ce := LoggerFromContext(ctx).Check(lvl, msg)
	if ce == nil {
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}
