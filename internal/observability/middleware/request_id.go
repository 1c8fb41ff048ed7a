// Package middleware provides http.RoundTripper wrappers for outbound API
// calls.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/zd20000723-dot/momo/internal/observability"
)

// RequestIDHeader carries the correlation ID on outbound requests.
const RequestIDHeader = "X-Request-ID"

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// getRequestID reads the request ID from the X-Request-ID header or context,
// generating one if missing.
func getRequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	if id, ok := observability.RequestIDFromContext(r.Context()); ok {
		return id
	}
	return uuid.New().String()
}

// RequestID ensures every request carries an X-Request-ID header and that the
// ID is stored in the request context for downstream round trippers.
func RequestID(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		requestID := getRequestID(r)

		// RoundTrippers must not modify the caller's request.
		r = r.Clone(observability.ContextWithRequestID(r.Context(), requestID))
		r.Header.Set(RequestIDHeader, requestID)

		return next.RoundTrip(r)
	})
}
