// Package logging builds the debug logger. Hooks speak to the host over
// stdout and stderr, so log output only ever goes to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adrianpk/stopgate/internal/config"
)

const logFileName = "stopgate.log"

// New returns a logger for cfg. With debug off it returns a no-op logger.
func New(cfg *config.LoggingConfig) (*zap.Logger, error) {
	if cfg == nil || !cfg.Debug {
		return zap.NewNop(), nil
	}

	path := cfg.File
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// DefaultPath is the log file used when none is configured.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(dir, "stopgate", logFileName), nil
}

// ForInvocation tags logger with a fresh invocation id and the command name.
func ForInvocation(logger *zap.Logger, command string) *zap.Logger {
	return logger.With(
		zap.String("invocation", uuid.NewString()),
		zap.String("command", command),
	)
}
