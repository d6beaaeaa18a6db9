// Package logging builds the process logger: log/slog on top of a zap core.
package logging

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New returns a slog logger writing through zap, and a sync func to flush it on exit.
// An unparsable level falls back to info; encoding is "json" or "console".
func New(level, encoding string) (*slog.Logger, func(), error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if encoding != "console" {
		encoding = "json"
	}

	cfg := &zap.Config{
		Level:    lvl,
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	z, err := cfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(zapslog.NewHandler(z.Core(), zapslog.WithCaller(true)))
	return logger, func() { _ = z.Sync() }, nil
}

// NewWithCore wraps an existing zap core; tests use it with an observer core.
func NewWithCore(core zapcore.Core) *slog.Logger {
	return slog.New(zapslog.NewHandler(core))
}
