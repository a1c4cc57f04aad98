package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// Level is one of debug, info, warn or error.
	Level string

	// File, when set, receives JSON logs rotated at MaxSize megabytes.
	File       string
	MaxSize    int
	MaxBackups int
	Compress   bool

	// Quiet drops console output, leaving only the file.
	Quiet bool
}

// New builds a sugared logger writing human-readable lines to stderr and,
// optionally, JSON lines to a rotating file.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var cores []zapcore.Core
	if !cfg.Quiet {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level))
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     28,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotator), level))
	}

	if len(cores) == 0 {
		return zap.NewNop().Sugar(), nil
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar(), nil
}

// Nop is the logger library packages fall back to.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
