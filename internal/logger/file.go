// internal/logger/file.go
package logger

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig controls the rotating JSON log file.
type FileConfig struct {
	LogFile     string
	MaxSize     int  // megabytes
	MaxAge      int  // days
	MaxBackups  int  // rotated files kept
	Compress    bool // gzip rotated files
	Development bool
}

// DefaultFileConfig returns the rotation defaults.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		LogFile:    "logs/token-swap.log",
		MaxSize:    20,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

func (c *FileConfig) level() zapcore.Level {
	if c.Development {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// NewFileCore returns a JSON core writing to a lumberjack-rotated file.
func NewFileCore(cfg *FileConfig) (zapcore.Core, error) {
	if cfg == nil {
		cfg = DefaultFileConfig()
	}
	if cfg.LogFile == "" {
		return nil, fmt.Errorf("log file path is required")
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), cfg.level()), nil
}

// Logger wraps zap.Logger with operation helpers.
type Logger struct {
	*zap.Logger
	config *FileConfig
}

// NewFileLogger writes JSON to a rotating file, teeing into extra cores.
func NewFileLogger(cfg *FileConfig, extra ...zapcore.Core) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultFileConfig()
	}
	fileCore, err := NewFileCore(cfg)
	if err != nil {
		return nil, err
	}

	cores := append([]zapcore.Core{fileCore}, extra...)
	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		config: cfg,
	}, nil
}

// WithOperation tags a logger with an operation name and a fresh
// correlation id.
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return WithOperation(l.Logger, operation)
}

// WithOperation is the free-standing form for plain zap loggers.
func WithOperation(logger *zap.Logger, operation string) *zap.Logger {
	return logger.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
	)
}

// TrackPerformance logs the start of operation and returns a func that
// logs its duration.
func (l *Logger) TrackPerformance(operation string) (end func()) {
	start := time.Now()
	opLogger := l.WithOperation(operation)
	opLogger.Debug("Starting operation")

	return func() {
		duration := time.Since(start)
		opLogger.Debug("Operation completed",
			zap.Duration("duration", duration),
			zap.Float64("duration_ms", float64(duration.Microseconds())/1000),
		)
	}
}

// Sync ignores the errors terminals return for fsync on stdout/stderr.
func (l *Logger) Sync() error {
	return IgnoreTTYSyncError(l.Logger.Sync())
}

// IgnoreTTYSyncError filters EINVAL/ENOTTY, which Sync reports for
// terminals and pipes.
func IgnoreTTYSyncError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	if pe := new(os.PathError); errors.As(err, &pe) && (pe.Path == "/dev/stdout" || pe.Path == "/dev/stderr") {
		return nil
	}
	return err
}
