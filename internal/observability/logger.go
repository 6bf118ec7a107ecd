package observability

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one JSON object per event. A nil *Logger discards everything.
type Logger struct {
	base *zap.Logger
}

func NewLogger() *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)
	return &Logger{base: zap.New(core)}
}

// NewLoggerFromZap wraps an existing zap logger, e.g. one built on
// zaptest/observer in tests.
func NewLoggerFromZap(base *zap.Logger) *Logger {
	return &Logger{base: base}
}

func (l *Logger) Info(message string, fields map[string]any) {
	l.write(zapcore.InfoLevel, message, fields)
}

func (l *Logger) Warn(message string, fields map[string]any) {
	l.write(zapcore.WarnLevel, message, fields)
}

func (l *Logger) Error(message string, fields map[string]any) {
	l.write(zapcore.ErrorLevel, message, fields)
}

func (l *Logger) Sync() error {
	if l == nil || l.base == nil {
		return nil
	}
	return l.base.Sync()
}

func (l *Logger) write(level zapcore.Level, message string, fields map[string]any) {
	if l == nil || l.base == nil {
		return
	}
	ce := l.base.Check(level, message)
	if ce == nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zfields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zfields = append(zfields, zap.Any(k, fields[k]))
	}
	ce.Write(zfields...)
}
