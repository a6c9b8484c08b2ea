package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FieldJobID    = "job_id"
	FieldStage    = "stage"
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// ForJob attaches the job id to every entry written by the returned logger.
func ForJob(l *zap.Logger, jobID string) *zap.Logger {
	return OrNop(l).With(zap.String(FieldJobID, jobID))
}

// WithProvider attaches provider and model fields, skipping empty values.
func WithProvider(l *zap.Logger, provider, model string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if p := strings.TrimSpace(provider); p != "" {
		fields = append(fields, zap.String(FieldProvider, p))
	}
	if m := strings.TrimSpace(model); m != "" {
		fields = append(fields, zap.String(FieldModel, m))
	}
	if len(fields) == 0 {
		return OrNop(l)
	}
	return OrNop(l).With(fields...)
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
