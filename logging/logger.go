// Package logging provides structured JSON logging for the docshare server.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

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
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config value such as "info" onto a Level. Unknown values
// fall back to INFO.
func ParseLevel(value string) Level {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Entry represents a single log entry with structured fields.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Service   string         `json:"service,omitempty"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Duration  *int64         `json:"duration_ms,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Logger writes JSON lines to every configured writer.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	writers  []io.Writer
	service  string
	now      func() time.Time
}

// New creates a logger for service. With no writers it logs to stdout.
func New(service string, minLevel Level, writers ...io.Writer) *Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	return &Logger{
		minLevel: minLevel,
		writers:  writers,
		service:  service,
		now:      time.Now,
	}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New("", FATAL+1, io.Discard)
}

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.minLevel
}

// Log writes a log entry at the specified level.
func (l *Logger) Log(level Level, category, message string, fields map[string]any) {
	if !l.Enabled(level) {
		return
	}
	l.write(Entry{
		Level:    level.String(),
		Category: category,
		Message:  message,
		Fields:   fields,
	})
}

// Debug logs a debug message.
func (l *Logger) Debug(category, message string, fields map[string]any) {
	l.Log(DEBUG, category, message, fields)
}

// Info logs an info message.
func (l *Logger) Info(category, message string, fields map[string]any) {
	l.Log(INFO, category, message, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(category, message string, fields map[string]any) {
	l.Log(WARN, category, message, fields)
}

// Error logs an error message.
func (l *Logger) Error(category, message string, err error, fields map[string]any) {
	if !l.Enabled(ERROR) {
		return
	}
	entry := Entry{
		Level:    ERROR.String(),
		Category: category,
		Message:  message,
		Fields:   fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

func (l *Logger) write(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	entry.Service = l.service
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.writers {
		_, _ = w.Write(data)
	}
}

// LogContext carries a request ID, category and fields across calls.
type LogContext struct {
	logger    *Logger
	requestID string
	category  string
	fields    map[string]any
}

// WithRequestID creates a logging context with a request ID.
func (l *Logger) WithRequestID(requestID string) *LogContext {
	return &LogContext{
		logger:    l,
		requestID: requestID,
		fields:    make(map[string]any),
	}
}

// WithCategory sets the category for this context.
func (c *LogContext) WithCategory(category string) *LogContext {
	c.category = category
	return c
}

// WithField adds a field to this context.
func (c *LogContext) WithField(key string, value any) *LogContext {
	c.fields[key] = value
	return c
}

// Info logs an info message with the context's request ID and fields.
func (c *LogContext) Info(message string) {
	c.log(INFO, message, nil)
}

// Warn logs a warning message with the context's request ID and fields.
func (c *LogContext) Warn(message string) {
	c.log(WARN, message, nil)
}

// Error logs an error message with the context's request ID and fields.
func (c *LogContext) Error(message string, err error) {
	c.log(ERROR, message, err)
}

func (c *LogContext) log(level Level, message string, err error) {
	if !c.logger.Enabled(level) {
		return
	}
	entry := Entry{
		Level:     level.String(),
		Category:  c.category,
		Message:   message,
		Fields:    c.fields,
		RequestID: c.requestID,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	c.logger.write(entry)
}

type requestIDKey struct{}

// ContextWithRequestID stores id on ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored by the HTTP middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns a LogContext bound to the request ID found on ctx.
func (l *Logger) FromContext(ctx context.Context) *LogContext {
	return l.WithRequestID(RequestID(ctx))
}
