package logger

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"straico-gateway/internal"
)

var apiKeyPattern = regexp.MustCompile(`(sk-|Bearer )[A-Za-z0-9._-]{6,}`)

// base is the process-wide logrus logger, configured once with the same
// JSON formatter shape the teacher's observability logger used for Loki
// ingestion: timestamp/level/message field names, one line per entry.
var base = newBaseLogger()

func newBaseLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetLevel(logrus.DebugLevel)
	return l
}

// Level represents the severity level of a log message
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Emoji returns the emoji prefix for a log level, for callers that want
// one in the message text itself. The lifecycle helpers in utils.go
// (LogRequest and friends) use their own Emoji* constants instead.
func (l Level) Emoji() string {
	switch l {
	case DEBUG:
		return "🔍"
	case INFO:
		return "ℹ️"
	case WARN:
		return "⚠️"
	case ERROR:
		return "❌"
	default:
		return "📝"
	}
}

// Logger defines the interface for structured logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	WithField(key, value string) Logger
	WithModel(model string) Logger
	WithComponent(component string) Logger
}

// ContextLogger implements the Logger interface with context-aware
// filtering, wrapping a logrus.Entry that already carries whatever
// component/model/field tags were attached via the With* methods.
type ContextLogger struct {
	ctx    context.Context
	config LoggerConfig
	entry  *logrus.Entry
	model  string
}

// LoggerConfig holds configuration for the logger
type LoggerConfig interface {
	ShouldLogForModel(model string) bool
	GetMinLogLevel() Level
	ShouldMaskAPIKeys() bool
}

// contextKey is used for storing logger in context
type contextKey string

const (
	loggerContextKey contextKey = "logger"
)

// New creates a new ContextLogger with the given config
func New(ctx context.Context, config LoggerConfig) Logger {
	return &ContextLogger{
		ctx:    ctx,
		config: config,
		entry:  logrus.NewEntry(base),
	}
}

// FromContext returns a logger from context, or creates a new one if none exists
func FromContext(ctx context.Context, config LoggerConfig) Logger {
	if logger, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return logger
	}
	return New(ctx, config)
}

// WithContext stores the logger in context for later retrieval
func (l *ContextLogger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerContextKey, l)
}

// WithField adds a field to the logger context
func (l *ContextLogger) WithField(key, value string) Logger {
	return &ContextLogger{
		ctx:    l.ctx,
		config: l.config,
		entry:  l.entry.WithField(key, value),
		model:  l.model,
	}
}

// WithModel sets the model for filtering decisions
func (l *ContextLogger) WithModel(model string) Logger {
	return &ContextLogger{
		ctx:    l.ctx,
		config: l.config,
		entry:  l.entry.WithField("model", model),
		model:  model,
	}
}

// WithComponent sets the component for the logger
func (l *ContextLogger) WithComponent(component string) Logger {
	return &ContextLogger{
		ctx:    l.ctx,
		config: l.config,
		entry:  l.entry.WithField("component", component),
		model:  l.model,
	}
}

// shouldLog determines if a message should be logged based on level and model filtering
func (l *ContextLogger) shouldLog(level Level) bool {
	if level < l.config.GetMinLogLevel() {
		return false
	}
	if l.model != "" && !l.config.ShouldLogForModel(l.model) {
		return false
	}
	return true
}

// entryWithContext attaches the request ID carried on ctx, if any, and
// masks API keys in the message when configured to.
func (l *ContextLogger) entryWithContext(format string, args ...interface{}) (*logrus.Entry, string) {
	entry := l.entry
	if requestID := internal.GetRequestID(l.ctx); requestID != "" && requestID != "unknown" {
		entry = entry.WithField("request_id", requestID)
	}
	message := fmt.Sprintf(format, args...)
	if l.config.ShouldMaskAPIKeys() {
		message = l.maskAPIKeys(message)
	}
	return entry, message
}

// maskAPIKeys replaces any bearer-token-shaped substring with a masked
// stand-in so request logs never leak the Straico API key.
func (l *ContextLogger) maskAPIKeys(message string) string {
	return apiKeyPattern.ReplaceAllString(message, "$1***")
}

// Debug logs a debug level message
func (l *ContextLogger) Debug(format string, args ...interface{}) {
	if l.shouldLog(DEBUG) {
		entry, message := l.entryWithContext(format, args...)
		entry.Debug(message)
	}
}

// Info logs an info level message
func (l *ContextLogger) Info(format string, args ...interface{}) {
	if l.shouldLog(INFO) {
		entry, message := l.entryWithContext(format, args...)
		entry.Info(message)
	}
}

// Warn logs a warning level message
func (l *ContextLogger) Warn(format string, args ...interface{}) {
	if l.shouldLog(WARN) {
		entry, message := l.entryWithContext(format, args...)
		entry.Warn(message)
	}
}

// Error logs an error level message
func (l *ContextLogger) Error(format string, args ...interface{}) {
	if l.shouldLog(ERROR) {
		entry, message := l.entryWithContext(format, args...)
		entry.Error(message)
	}
}
