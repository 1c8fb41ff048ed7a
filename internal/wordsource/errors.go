package wordsource

import (
	"context"
	"errors"
	"fmt"
)

// ConfigError reports configuration that makes a request impossible.
// It is always returned before any network call is made.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := "wordsource: invalid config"
	if e.Field != "" {
		msg += " " + e.Field
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NetworkError reports a transport failure: connection refused, DNS failure,
// timeout or a body that could not be read.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("wordsource: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by a deadline.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) {
		return t.Timeout()
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// HTTPError reports a non-2xx response. Body holds the raw response body.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("wordsource: %s %s failed with status %d: %s",
		e.Method, e.URL, e.StatusCode, truncate(string(e.Body), 512))
}

// ParseError reports a response body that is not valid JSON, or a payload
// selector that could not be evaluated against it.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wordsource: parsing response from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AuthResponseError reports a successful token response without a usable
// access_token field.
type AuthResponseError struct {
	URL     string
	Message string
}

func (e *AuthResponseError) Error() string {
	return fmt.Sprintf("wordsource: token response from %s: %s", e.URL, e.Message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
