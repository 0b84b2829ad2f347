package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/benoitkugler/reportlayout/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// ProgressLogger logs the main steps of a layout pass.
	ProgressLogger = zap.NewNop().Sugar()

	// WarningLogger emits a warning for each non fatal error, like unparseable
	// style values, overflowing content or detected conflicts.
	WarningLogger = zap.NewNop().Sugar()

	mu sync.Mutex
)

func init() {
	ReplaceCore(newConsoleCore(config.LoggerConfig{Level: "warn", Format: "console"}, zapcore.Lock(os.Stderr)))
}

// Initialize sets up the loggers from the configuration: a console core on
// stdout, and a JSON core writing to a rotated file when LogFile is set.
func Initialize(cfg config.LoggerConfig) {
	cores := []zapcore.Core{newConsoleCore(cfg, zapcore.Lock(os.Stdout))}
	if cfg.LogFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileWriter, level(cfg)))
	}
	root := zap.New(zapcore.NewTee(cores...))
	if cfg.ServiceName != "" {
		root = root.Named(cfg.ServiceName)
	}
	replace(root)
}

// ReplaceCore routes both loggers to [core], returning a function
// restoring the previous ones.
func ReplaceCore(core zapcore.Core) (restore func()) {
	mu.Lock()
	prevProgress, prevWarning := ProgressLogger, WarningLogger
	mu.Unlock()
	replace(zap.New(core))
	return func() {
		mu.Lock()
		defer mu.Unlock()
		ProgressLogger, WarningLogger = prevProgress, prevWarning
	}
}

func replace(root *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	ProgressLogger = root.Named("progress").Sugar()
	WarningLogger = root.Named("warning").Sugar()
}

func level(cfg config.LoggerConfig) zap.AtomicLevel {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}
	return lvl
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	return enc
}

func newConsoleCore(cfg config.LoggerConfig, w zapcore.WriteSyncer) zapcore.Core {
	enc := encoderConfig()
	if strings.EqualFold(cfg.Format, "json") {
		return zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, level(cfg))
	}
	if cfg.Color {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(enc), w, level(cfg))
}
