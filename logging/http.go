package logging

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPLogger logs every request handled by the wrapped handler.
type HTTPLogger struct {
	logger *Logger
}

// NewHTTPLogger creates a new HTTP logger.
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{logger: logger}
}

// responseRecorder captures status and size for logging.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(status)
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("responseRecorder does not support hijacking")
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Middleware tags each request with an X-Request-ID and logs the outcome.
// Request bodies are never captured: uploads can be tens of megabytes.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		recorder := &responseRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		recorder.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(recorder, r.WithContext(ContextWithRequestID(r.Context(), requestID)))

		duration := time.Since(start).Milliseconds()
		fields := map[string]any{
			"method":         r.Method,
			"path":           r.URL.Path,
			"query":          r.URL.RawQuery,
			"status":         recorder.status,
			"size":           recorder.size,
			"remote_addr":    r.RemoteAddr,
			"user_agent":     r.UserAgent(),
			"referer":        r.Referer(),
			"content_type":   r.Header.Get("Content-Type"),
			"content_length": r.ContentLength,
		}

		headers := make(map[string]string)
		for name, values := range r.Header {
			if !isSensitiveHeader(name) {
				headers[name] = strings.Join(values, ", ")
			}
		}
		if len(headers) > 0 {
			fields["request_headers"] = headers
		}

		level := INFO
		if recorder.status >= 400 {
			level = WARN
		}
		if recorder.status >= 500 {
			level = ERROR
		}
		if !h.logger.Enabled(level) {
			return
		}
		h.logger.write(Entry{
			Level:     level.String(),
			Category:  "http",
			Message:   fmt.Sprintf("%s %s %d", r.Method, r.URL.Path, recorder.status),
			Fields:    fields,
			RequestID: requestID,
			Duration:  &duration,
		})
	})
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "auth") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "cookie") ||
		strings.Contains(lower, "key") ||
		strings.Contains(lower, "secret")
}
