// Package logging builds the zap logger shared by the CLI and the engine.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger at level. Development loggers use the console encoder
// and log at debug regardless of level.
func New(level string, development bool) (*zap.Logger, error) {
	if development {
		config := zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
		return config.Build()
	}

	config := zap.NewProductionConfig()

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableCaller = true

	return config.Build()
}
