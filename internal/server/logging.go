package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// loggingMiddleware logs one line per request with the request id, method,
// path, status, timing, client IP and response size.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		s.log.Info("request", map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"ms":         time.Since(start).Milliseconds(),
			"bytes":      ww.BytesWritten(),
			"ip":         clientIP(r),
			"ua":         r.UserAgent(),
		})

		s.metrics.RecordRequest(status)
	})
}

// clientIP returns the host part of RemoteAddr. middleware.RealIP has
// already replaced it with X-Forwarded-For / X-Real-IP when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
