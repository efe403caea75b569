// Package gateway is the browser-facing HTTP surface of authgate.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/internal/telemetry/metric"
)

// Context keys for request-scoped values.
type contextKey string

const (
	// ContextKeyRequestID is the context key for request ID.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyDeviceID is the context key for the device cookie value.
	ContextKeyDeviceID contextKey = "device_id"

	// ContextKeyStartTime is the context key for request start time.
	ContextKeyStartTime contextKey = "start_time"
)

// DeviceCookie is the name of the long-lived cookie that scopes the
// volatile fingerprint store to one browser.
const DeviceCookie = "device_id"

// deviceCookieTTL keeps the device cookie well past both token
// lifetimes.
const deviceCookieTTL = 365 * 24 * time.Hour

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = domain.NewRequestID()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeviceID ensures every browser carries a device cookie and exposes
// its value on the context. The cookie keys the volatile fingerprint
// store, so a stolen token replayed from another browser misses its
// fingerprint and is adopted fresh rather than trusted.
func DeviceID(insecure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var deviceID string
			if c, err := r.Cookie(DeviceCookie); err == nil && strings.HasPrefix(c.Value, domain.DeviceIDPrefix) {
				deviceID = c.Value
			} else {
				deviceID = domain.NewDeviceID()
				http.SetCookie(w, &http.Cookie{
					Name:     DeviceCookie,
					Value:    deviceID,
					Path:     "/",
					Expires:  time.Now().Add(deviceCookieTTL),
					Secure:   !insecure,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ContextKeyDeviceID, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit applies per-IP rate limiting across all routes it wraps.
func RateLimit(requestsPerSecond int) Middleware {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
			limiters[ip] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(getClientIP(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, "AG-SYS-4290", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLog logs every request on completion and feeds the request
// metrics. The route label is passed explicitly so metric cardinality
// stays bounded to the route table.
func RequestLog(logger *slog.Logger, m *metric.Registry, route string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(ContextKeyRequestID).(string)
			startTime, _ := r.Context().Value(ContextKeyStartTime).(time.Time)
			duration := time.Since(startTime)

			if m != nil {
				m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
				m.RequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
			}

			attrs := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", getClientIP(r),
			}

			switch {
			case wrapped.statusCode >= 500:
				logger.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				logger.Warn("request completed with client error", attrs...)
			default:
				logger.Info("request completed", attrs...)
			}
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID, _ := r.Context().Value(ContextKeyRequestID).(string)
					logger.Error("panic recovered",
						"request_id", requestID,
						"error", err,
						"path", r.URL.Path,
					)
					writeError(w, "AG-SYS-5000", "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// GetRequestIDFromContext retrieves the request ID from context.
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetDeviceIDFromContext retrieves the device cookie value from
// context.
func GetDeviceIDFromContext(ctx context.Context) string {
	if deviceID, ok := ctx.Value(ContextKeyDeviceID).(string); ok {
		return deviceID
	}
	return ""
}

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	domain.ErrCredentialsInvalid.Code:    http.StatusUnauthorized,
	domain.ErrLoginRateLimited.Code:      http.StatusTooManyRequests,
	domain.ErrTenantUnknown.Code:         http.StatusNotFound,
	domain.ErrTenantDiscoveryFailed.Code: http.StatusBadGateway,
	domain.ErrTokenExpired.Code:          http.StatusUnauthorized,
	domain.ErrTokenCompromised.Code:      http.StatusUnauthorized,
	domain.ErrRefreshFailed.Code:         http.StatusUnauthorized,
	domain.ErrSessionAbsent.Code:         http.StatusUnauthorized,
	domain.ErrNotAuthenticated.Code:      http.StatusUnauthorized,
	domain.ErrInvalidTransition.Code:     http.StatusConflict,
	domain.ErrNetwork.Code:               http.StatusBadGateway,
	domain.ErrStorage.Code:               http.StatusInternalServerError,
}

// writeDomainError writes an error response for a domain error,
// falling back to a generic 500 for anything unstructured.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		writeError(w, "AG-SYS-5000", "internal server error")
		return
	}
	writeError(w, de.Code, de.Message)
}

// writeError writes a JSON error response. Status is derived from the
// code: known domain codes map explicitly, otherwise the numeric block
// decides.
func writeError(w http.ResponseWriter, code, message string) {
	status, ok := statusByCode[code]
	if !ok {
		switch {
		case strings.HasSuffix(code, "-4290"):
			status = http.StatusTooManyRequests
		case strings.Contains(code, "-4"):
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
