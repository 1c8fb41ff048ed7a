package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging logs outbound requests with method, redacted URL, status and
// duration. Headers and bodies are never logged since they carry tokens.
func Logging(logger *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("url", r.URL.Redacted()),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(r.Context(), slog.LevelWarn, "request failed", attrs...)
			return nil, err
		}

		attrs = append(attrs, slog.Int("status", resp.StatusCode))
		level := slog.LevelDebug
		if resp.StatusCode >= 400 {
			level = slog.LevelWarn
		}
		logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		return resp, nil
	})
}

// Chain wraps base with RequestID and Logging, outermost first.
func Chain(logger *slog.Logger, base http.RoundTripper) http.RoundTripper {
	return RequestID(Logging(logger, base))
}
