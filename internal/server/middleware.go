// Provides request id and access log middleware.

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maruel/blogdb/internal/server/reqctx"
	"github.com/maruel/ksid"
)

// RequestIDHeader carries the request id in responses.
const RequestIDHeader = "X-Request-ID"

// LogRequests assigns each request an id and logs it once served.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ksid.NewID()
		w.Header().Set(RequestIDHeader, id.String())
		ctx := reqctx.WithRequestID(r.Context(), id)
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))
		slog.InfoContext(ctx, "http",
			"id", id.String(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"size", rw.size,
			"ip", reqctx.GetClientIP(r),
			"dur", time.Since(start).Round(time.Microsecond),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
