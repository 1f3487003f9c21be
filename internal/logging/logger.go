package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is a component-scoped structured logger.
type Logger struct {
	zl *zap.Logger
}

var (
	baseMu sync.RWMutex
	base   *zap.Logger
)

func init() {
	base = newBase(os.Getenv("LOG_LEVEL"))
}

func newBase(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func parseLevel(level string) zapcore.Level {
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

// SetLevel rebuilds the process logger at the given level. Loggers created
// before the call keep their previous core.
func SetLevel(level string) {
	baseMu.Lock()
	defer baseMu.Unlock()
	base = newBase(level)
}

// NewLogger creates a logger tagged with the given component name.
func NewLogger(component string) *Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return FromZap(base, component)
}

// FromZap wraps an existing zap logger under a component name.
func FromZap(zl *zap.Logger, component string) *Logger {
	return &Logger{zl: zl.With(zap.String("component", component))}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.zl.Debug(msg, toZap(fields)...)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.zl.Info(msg, toZap(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.zl.Warn(msg, toZap(fields)...)
}

func (l *Logger) Error(msg string, fields ...Fields) {
	l.zl.Error(msg, toZap(fields)...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Fields) {
	l.zl.Fatal(msg, toZap(fields)...)
}

// With returns a child logger that always includes the given fields.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{zl: l.zl.With(toZap([]Fields{fields})...)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func toZap(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for _, f := range fields {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
