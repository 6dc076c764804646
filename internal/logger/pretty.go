// internal/logger/pretty.go
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorBold   = "\033[1m"
)

// Keys shared by every encoder in this package. LogBuffer.Write relies on them.
const (
	messageKey    = "msg"
	levelKey      = "level"
	timeKey       = "time"
	nameKey       = "logger"
	iso8601Layout = "2006-01-02T15:04:05.000Z0700"
)

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     messageKey,
		LevelKey:       levelKey,
		TimeKey:        timeKey,
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(prettyEncoderConfig())
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// CreatePrettyLogger creates a logger with user-friendly output on stdout.
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	core := zapcore.NewCore(
		PrettyEncoder(),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		levelFor(debug),
	)
	return zap.New(&FieldFilterCore{core: core}), nil
}

// FormatMessage turns the well-known swap log lines into short readable
// sentences. Unknown messages pass through unchanged.
func FormatMessage(msg string, fields ...zap.Field) string {
	switch {
	case strings.Contains(msg, "Catalog loaded"):
		count := extractField(fields, "count")
		return fmt.Sprintf("%s📋 Loaded %s tokens%s", ColorBlue, count, ColorReset)

	case strings.Contains(msg, "using fallback catalog"):
		return fmt.Sprintf("%s⚠ Price feed unavailable, using built-in prices%s", ColorYellow, ColorReset)

	case strings.Contains(msg, "Submitting swap"):
		id := extractField(fields, "tx_id")
		return fmt.Sprintf("%s📤 Submitting swap %s%s", ColorYellow, shortenID(id), ColorReset)

	case strings.Contains(msg, "Swap confirmed"):
		id := extractField(fields, "tx_id")
		return fmt.Sprintf("%s✅ Swap confirmed: %s%s", ColorGreen, shortenID(id), ColorReset)

	case strings.Contains(msg, "Swap failed"):
		id := extractField(fields, "tx_id")
		return fmt.Sprintf("%s✗ Swap failed: %s%s", ColorRed, shortenID(id), ColorReset)

	case strings.Contains(msg, "Quote"):
		pair := extractField(fields, "pair")
		amount := extractField(fields, "amount")
		output := extractField(fields, "output")
		if pair == "" {
			return msg
		}
		return fmt.Sprintf("%s⚡ %s %s → %s%s", ColorCyan, amount, pair, output, ColorReset)

	default:
		return msg
	}
}

func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
			return fmt.Sprintf("%d", field.Integer)
		default:
			return fmt.Sprintf("%v", field.Interface)
		}
	}
	return ""
}

func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FieldFilterCore drops structured fields from console output and renders
// the message through FormatMessage instead.
type FieldFilterCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &FieldFilterCore{core: c.core, fields: merged}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	clean := entry
	clean.Message = FormatMessage(entry.Message, all...)
	return c.core.Write(clean, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}

func bufferEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     messageKey,
		LevelKey:       levelKey,
		TimeKey:        timeKey,
		NameKey:        nameKey,
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// NewBufferCore encodes entries as JSON into buffer.
func NewBufferCore(debug bool, buffer *LogBuffer) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(bufferEncoderConfig()),
		buffer,
		levelFor(debug),
	)
}

// CreateTUILoggerWithBuffer creates a TUI-compatible logger that only writes
// to buffer (and to extra cores, such as a rotating file). Nothing reaches
// the terminal, which belongs to the TUI.
func CreateTUILoggerWithBuffer(debug bool, buffer *LogBuffer, extra ...zapcore.Core) (*zap.Logger, error) {
	if buffer == nil {
		return nil, fmt.Errorf("buffer is required for TUI logger")
	}

	cores := append([]zapcore.Core{NewBufferCore(debug, buffer)}, extra...)
	return zap.New(zapcore.NewTee(cores...)), nil
}
