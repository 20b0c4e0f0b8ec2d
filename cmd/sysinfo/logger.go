package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/opd-ai/go-sysinfo/internal/config"
)

// newLogger builds the logr.Logger described by cfg. The returned function
// flushes buffered entries.
func newLogger(cfg config.LogConfig, stderr io.Writer) (logr.Logger, func(), error) {
	if cfg.Format == config.LogFormatSlog {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slogLevel(cfg.Level)})
		return logr.FromSlogHandler(handler), func() {}, nil
	}

	var zapConfig zap.Config
	if cfg.Format == config.LogFormatJSON {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.DisableStacktrace = true
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel(cfg.Level))
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	zapLog, err := zapConfig.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("failed to create logger: %w", err)
	}
	return zapr.NewLogger(zapLog), func() { _ = zapLog.Sync() }, nil
}

// zapLevel maps a level name onto zap. logr's V(1) is zap's -1.
func zapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.Level(-1)
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// slogLevel maps a level name onto slog. logr's V(1) is slog level -1.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.Level(-1)
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
