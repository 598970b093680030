package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"kidslearning/internal/metrics"
)

// Monitor records request counts and latencies. It must wrap the ServeMux
// directly so the matched route pattern is available as the path label.
func Monitor(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Initialize with 200 OK in case WriteHeader isn't called explicitly
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(path, r.Method, strconv.Itoa(ww.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())

			if ww.statusCode == http.StatusForbidden {
				m.AuthRejections.WithLabelValues("403_forbidden").Inc()
			}
		})
	}
}

// BasicAuth protects /metrics. An empty user leaves the endpoint open.
func BasicAuth(user, password string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), []byte(password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
			http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
