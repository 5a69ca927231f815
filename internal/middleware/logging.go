package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// responseWriter captures the status code and, at DEBUG, the response body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// wrap returns w as a *responseWriter, reusing an existing wrapper
func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// requestInfo is filled in by inner middleware for the request log line
type requestInfo struct {
	userID string
}

const infoKey contextKey = "request_info"

// bodies of these paths carry credentials and are never logged
var redactedPaths = []string{"/auth/login"}

func redacted(path string) bool {
	for _, p := range redactedPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs all HTTP requests with level-based detail
//
// Log levels:
// - INFO: every request with remote IP, user agent, method and path
// - DEBUG: additionally query parameters and bodies, except on login
// - WARN: failed requests (status 4xx)
// - ERROR: server and upstream errors (status 5xx)
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug) && !redacted(r.URL.Path)

		var requestBody []byte
		if debug && r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		info := &requestInfo{}
		r = r.WithContext(context.WithValue(r.Context(), infoKey, info))

		wrapped := wrap(w)
		if debug {
			wrapped.body = &bytes.Buffer{}
		}

		attrs := []any{
			"remote_ip", ClientIP(r),
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
		}
		if debug {
			if len(r.URL.RawQuery) > 0 {
				attrs = append(attrs, "query_params", r.URL.Query())
			}
			if len(requestBody) > 0 {
				attrs = append(attrs, "request_body", string(requestBody))
			}
			slog.Debug("Incoming request", attrs...)
		} else {
			slog.Info("Incoming request", attrs...)
		}

		next.ServeHTTP(wrapped, r)

		var level slog.Level
		var msg string
		switch {
		case wrapped.statusCode >= 500:
			level, msg = slog.LevelError, "Request failed with error"
		case wrapped.statusCode >= 400:
			level, msg = slog.LevelWarn, "Request failed"
		default:
			level, msg = slog.LevelInfo, "Request completed"
		}

		done := []any{
			"remote_ip", ClientIP(r),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if info.userID != "" {
			done = append(done, "user_id", info.userID)
		}
		if debug && wrapped.body != nil && wrapped.body.Len() > 0 {
			done = append(done, "response_body", wrapped.body.String())
		}

		slog.Log(r.Context(), level, msg, done...)
	})
}
