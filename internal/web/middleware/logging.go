// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvclean/internal/logging"
)

type fieldsKey struct{}

type requestFields struct {
	mu    sync.Mutex
	attrs []any
}

// Annotate adds key/value pairs to the request log line written by Logger.
// It does nothing outside a request wrapped by Logger.
func Annotate(ctx context.Context, args ...any) {
	f, ok := ctx.Value(fieldsKey{}).(*requestFields)
	if !ok {
		return
	}
	f.mu.Lock()
	f.attrs = append(f.attrs, args...)
	f.mu.Unlock()
}

// Logger writes one line per request with method, path, status, bytes,
// duration and client IP, plus whatever handlers added with Annotate
// (the clean handler adds the run ID and row counts). 5xx logs at error
// and 4xx at warn.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fields := &requestFields{}
		r = r.WithContext(context.WithValue(r.Context(), fieldsKey{}, fields))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", ClientIP(r),
		}
		fields.mu.Lock()
		args = append(args, fields.attrs...)
		fields.mu.Unlock()

		logging.FromContext(r.Context()).Log(r.Context(), levelFor(status), "request", args...)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
