// Package logger provides structured logging utilities.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around zap.Logger.
type Logger struct {
	*zap.Logger
}

// Options control how New builds the logger.
type Options struct {
	Level string
	// Format is "json" (default) or "console".
	Format  string
	Service string
}

// New creates a structured logger writing to stdout.
func New(opts Options) (*Logger, error) {
	encoding := "json"
	encodeLevel := zapcore.LowercaseLevelEncoder
	if strings.EqualFold(opts.Format, "console") {
		encoding = "console"
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config := zap.Config{
		Level:    zap.NewAtomicLevelAt(parseLevel(opts.Level)),
		Encoding: encoding,
		Sampling: &zap.SamplingConfig{Initial: 100, Thereafter: 100},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if opts.Service != "" {
		config.InitialFields = map[string]interface{}{"service": opts.Service}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithContext creates a child logger with request fields. Empty values are
// left out.
func (l *Logger) WithContext(correlationID, userID string) *Logger {
	var fields []zap.Field
	if correlationID != "" {
		fields = append(fields, zap.String("correlation_id", correlationID))
	}
	if userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	return l.With(fields...)
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

var global = NewNop()

func init() {
	format := "json"
	if os.Getenv("ENV") == "development" {
		format = "console"
	}
	if l, err := New(Options{Level: os.Getenv("LOG_LEVEL"), Format: format}); err == nil {
		global = l
	}
}

// Global returns the process-wide logger.
func Global() *Logger {
	return global
}

// SetGlobal replaces the process-wide logger.
func SetGlobal(l *Logger) {
	global = l
}
