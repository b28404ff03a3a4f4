package utils

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log *zap.Logger
	mu  sync.Mutex
)

// LogOptions picks the level and destinations of the process logger.
// Standard output is left to command results; logs always go to stderr.
type LogOptions struct {
	// Level is a zap level name; empty means info
	Level string
	// File additionally receives every entry when set
	File string
	// Debug forces the debug level regardless of Level
	Debug bool
}

// InitLogger builds the process logger from opts and makes it the one GetLogger returns.
// A previously installed logger is flushed and replaced.
func InitLogger(opts LogOptions) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		config.OutputPaths = append(config.OutputPaths, opts.File)
		config.ErrorOutputPaths = append(config.ErrorOutputPaths, opts.File)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	previous := log
	log = logger
	mu.Unlock()

	if previous != nil {
		_ = previous.Sync()
	}
	return logger, nil
}

// GetLogger returns the process logger, installing an info-level stderr logger on first use
func GetLogger() *zap.Logger {
	mu.Lock()
	current := log
	mu.Unlock()
	if current != nil {
		return current
	}

	logger, err := InitLogger(LogOptions{})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// CleanupLogger flushes any buffered log entries
func CleanupLogger() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
}
