package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

const invalidLogLevelFormat = "invalid log level %q: %w"

// NewApplicationLogger constructs a zap logger configured for human-readable console output on stderr.
func NewApplicationLogger(levelName string) (*zap.Logger, error) {
	trimmedLevel := strings.TrimSpace(levelName)
	if trimmedLevel == "" {
		trimmedLevel = DefaultLogLevel
	}
	level, levelErr := zapcore.ParseLevel(trimmedLevel)
	if levelErr != nil {
		return nil, fmt.Errorf(invalidLogLevelFormat, levelName, levelErr)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
