package middleware

import (
	"net/http"
	"time"

	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Logging writes one access log line per request. 5xx are logged as errors
// and 4xx as warnings.
func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			fields := []logger.Field{
				logger.String("request_id", GetRequestID(r.Context())),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status_code", wrapped.status),
				logger.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				logger.String("remote_addr", r.RemoteAddr),
			}

			switch {
			case wrapped.status >= http.StatusInternalServerError:
				log.Error(r.Context(), "http request", fields...)
			case wrapped.status >= http.StatusBadRequest:
				log.Warn(r.Context(), "http request", fields...)
			default:
				log.Info(r.Context(), "http request", fields...)
			}
		})
	}
}
