package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global = zap.NewNop()

// Init builds the process-wide logger. Production environments get the JSON
// encoder, everything else the console encoder.
func Init(level, environment string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	global = l
	zap.ReplaceGlobals(l)
	l.Info("Logger initialized", zap.String("level", level), zap.String("environment", environment))
	return l, nil
}

// ParseLevel maps LOG_LEVEL values onto zap levels. Unknown values mean info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// L returns the process-wide logger. It is a no-op logger until Init runs.
func L() *zap.Logger {
	return global
}

// Named returns a child logger for one component.
func Named(component string) *zap.Logger {
	return global.Named(component)
}

// Sync flushes buffered entries.
func Sync() {
	_ = global.Sync()
}
