package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type key string

var (
	Key       = key("logger")
	RequestID = "request_id"
)

type Logger struct {
	log *zap.Logger
}

func New(ctx context.Context, outputPaths []string, env string) context.Context {
	var cfg zap.Config

	switch env {
	case "local":
		cfg = zap.Config{
			Encoding:         "console",
			Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
			OutputPaths:      outputPaths,
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig: zapcore.EncoderConfig{
				MessageKey: "msg",
				LevelKey:   "level",
				TimeKey:    "ts",
				EncodeTime: zapcore.ISO8601TimeEncoder,
			},
		}
	case "dev":
		cfg = zap.Config{
			Encoding:         "json",
			Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
			OutputPaths:      outputPaths,
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
	default:
		cfg = zap.Config{
			Encoding:         "json",
			Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
			OutputPaths:      outputPaths,
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
	}

	log, err := cfg.Build()
	if err != nil {
		panic("can't init logger: " + err.Error())
	}

	return context.WithValue(ctx, Key, &Logger{log: log})
}

func GetFromCtx(ctx context.Context) *Logger {
	return ctx.Value(Key).(*Logger)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	if ctx.Value(RequestID) != nil {
		fields = append(fields, zap.String(RequestID, ctx.Value(RequestID).(string)))
	}
	l.log.Info(msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	if ctx.Value(RequestID) != nil {
		fields = append(fields, zap.String(RequestID, ctx.Value(RequestID).(string)))
	}
	l.log.Error(msg, fields...)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	if ctx.Value(RequestID) != nil {
		fields = append(fields, zap.String(RequestID, ctx.Value(RequestID).(string)))
	}
	l.log.Fatal(msg, fields...)
}

func (l *Logger) With(ctx context.Context, fields ...zap.Field) context.Context {
	if ctx.Value(RequestID) != nil {
		fields = append(fields, zap.String(RequestID, ctx.Value(RequestID).(string)))
	}
	return context.WithValue(ctx, Key, &Logger{log: l.log.With(fields...)})
}
