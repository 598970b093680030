package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"kidslearning/internal/metrics"
	"kidslearning/internal/security"
	"kidslearning/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	StudentContextKey ContextKey = "student"
)

// TokenValidator resolves a bearer token to a student id
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  TokenValidator
	limiter *security.RateLimiter
	metrics *metrics.Metrics
}

// NewMiddleware creates a new middleware instance. Any dependency may be nil
// to turn the matching check off.
func NewMiddleware(tokens TokenValidator, limiter *security.RateLimiter, m *metrics.Metrics) *Middleware {
	return &Middleware{
		tokens:  tokens,
		limiter: limiter,
		metrics: m,
	}
}

// RequireStudentToken requires a bearer token issued for the student named
// by the {id} path value
func (m *Middleware) RequireStudentToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.tokens == nil {
			respondWithError(w, http.StatusServiceUnavailable, "Progress backend is not enabled", "", nil)
			return
		}

		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			m.reject("missing_token")
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		studentID, err := m.tokens.ValidateToken(token)
		if err != nil {
			m.reject("invalid_token")
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		if studentID != r.PathValue("id") {
			m.reject("wrong_student")
			respondWithServiceError(w, "", service.ErrForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), StudentContextKey, studentID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the per-IP request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			m.reject("rate_limited")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

func (m *Middleware) reject(reason string) {
	if m.metrics != nil {
		m.metrics.AuthRejections.WithLabelValues(reason).Inc()
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetStudentIDFromContext retrieves the authenticated student id
func GetStudentIDFromContext(ctx context.Context) string {
	studentID, ok := ctx.Value(StudentContextKey).(string)
	if !ok {
		return ""
	}
	return studentID
}
