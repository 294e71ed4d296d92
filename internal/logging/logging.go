// Package logging builds the process-wide zap logger.
//
// The interactive UI owns stdout, so log output always goes to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// File is the log file path. Empty means DefaultFile().
	File string
	// Debug lowers the level to Debug.
	Debug bool
}

// DefaultFile returns the default log file location.
func DefaultFile() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "chatgrep.log"
	}
	return filepath.Join(configDir, "chatgrep", "chatgrep.log")
}

// New creates a file-backed logger. The returned close function flushes
// buffered entries and must be called on shutdown.
func New(opts Options) (*zap.Logger, func(), error) {
	path := opts.File
	if path == "" {
		path = DefaultFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), level)
	logger := zap.New(core)

	closeFn := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, closeFn, nil
}
