package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

const millisecondsPerSecond = 1000

// MetricsMiddleware records request count, latency and error class for one
// endpoint label.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status,
			time.Since(start).Seconds()*millisecondsPerSecond)

		if errType, severity, ok := classify(rec.status); ok {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errType)
			metrics.RecordErrorByType(errType, severity)
		}
	}
}

// classify maps an error status to its metric labels. ok is false below 400.
func classify(status int) (errType, severity string, ok bool) {
	switch {
	case status < http.StatusBadRequest:
		return "", "", false
	case status == http.StatusServiceUnavailable:
		return "unavailable", "high", true
	case status >= http.StatusInternalServerError:
		return "server_error", "high", true
	case status == http.StatusRequestEntityTooLarge:
		return "payload_too_large", "medium", true
	case status == http.StatusNotFound:
		return "not_found", "low", true
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed", "low", true
	default:
		return "client_error", "medium", true
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
