// Package logging builds the application's zap logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/medreminder/internal/model"
)

// New returns a sugared logger for cfg and a function that flushes and
// closes it. The TUI owns the terminal, so logs go to cfg.Path; when
// toStderr is set (headless mode) they go to stderr as well.
func New(cfg model.LogConfig, toStderr bool) (*zap.SugaredLogger, func(), error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var syncers []zapcore.WriteSyncer
	var file *os.File
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.Path, err)
		}
		file = f
		syncers = append(syncers, zapcore.AddSync(f))
	}
	if toStderr || len(syncers) == 0 {
		syncers = append(syncers, zapcore.Lock(os.Stderr))
	}

	logger := build(zapcore.NewMultiWriteSyncer(syncers...), level)

	closeFn := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger.Sugar(), closeFn, nil
}

// NewWriter returns a sugared JSON logger writing to w.
func NewWriter(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	return build(zapcore.AddSync(w), level).Sugar()
}

func build(ws zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	return zap.New(
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level),
		zap.AddCaller(),
	).Named("medreminder")
}
