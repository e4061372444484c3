// Package logging builds the zap loggers used by hitstudio.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func consoleEncoder(noColor bool) zapcore.EncoderConfig {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	if noColor {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return encoderConfig
}

func jsonEncoder() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderConfig
}

// New creates a zap logger from cfg. Logs go to stderr so they never mix
// with command output, plus cfg.OutputPath when set.
func New(cfg config.LogConfig, noColor bool) (*zap.Logger, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "warn"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var (
		encoding      string
		encoderConfig zapcore.EncoderConfig
	)
	switch cfg.Format {
	case "json":
		encoding = "json"
		encoderConfig = jsonEncoder()
	case "console", "":
		encoding = "console"
		encoderConfig = consoleEncoder(noColor)
	default:
		return nil, fmt.Errorf("invalid log format: %q", cfg.Format)
	}

	outputPaths := []string{"stderr"}
	errorOutputPaths := []string{"stderr"}

	if cfg.OutputPath != "" {
		dir := filepath.Dir(cfg.OutputPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		outputPaths = append(outputPaths, cfg.OutputPath)
		errorOutputPaths = append(errorOutputPaths, cfg.OutputPath)
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorOutputPaths,
		EncoderConfig:    encoderConfig,
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
