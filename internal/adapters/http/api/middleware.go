package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/matchkey/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for one
// endpoint. endpoint is a fixed label, never the request path, so label
// cardinality stays bounded.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		method := methodLabel(r.Method)
		status := rec.status()
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest(endpoint, method, code)
		metrics.RecordHTTPRequestDuration(endpoint, method, code, float64(time.Since(start).Milliseconds()))

		if class := errorClass(status); class != "" {
			metrics.RecordErrorByEndpoint(endpoint, method, class)
		}
	}
}

// methodLabel folds unexpected methods into "other".
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete, http.MethodOptions:
		return m
	default:
		return "other"
	}
}

// errorClass returns the error_type label for status, or "" for success.
func errorClass(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "client_error"
	}
}

// statusRecorder remembers the first status written. A handler that only
// calls Write gets an implicit 200.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *statusRecorder) status() int {
	if r.code == 0 {
		return http.StatusOK
	}
	return r.code
}
