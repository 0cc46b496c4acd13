// pkg/logger/logger.go

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// L returns the process logger, falling back to the global zap logger if
// Initialize has not run yet.
func L() *zap.Logger {
	if log != nil {
		return log
	}
	return zap.L()
}

// ParseLogLevel maps a LOG_LEVEL string to a zap level, defaulting to Info.
func ParseLogLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// InitFallback initializes a console-only logger if nothing is set up yet.
// Safe to call more than once.
func InitFallback() {
	if log != nil {
		return
	}
	log = NewFallbackLogger()
	zap.ReplaceGlobals(log)
}

// Sync flushes buffered log entries. Errors from syncing stdout are ignored.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
