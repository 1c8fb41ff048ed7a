package wordsource

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmespath/go-jmespath"
	"golang.org/x/oauth2"
)

// Client fetches word lists from the configured word source. A Client is
// meant for sequential use by one caller; the OAuth token cache is scoped to
// the instance.
type Client struct {
	cfg        Config
	httpClient *http.Client
	auth       authorizer
	extractor  Extractor
	selector   *jmespath.JMESPath
	requestID  func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The configured timeout is
// still enforced per request through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRequestIDFunc sets the generator for X-Request-ID headers. A nil
// function disables the header.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		c.requestID = fn
	}
}

// New creates a Client for the variant selected by cfg.Variant. Missing OAuth
// credentials are not an error here; they surface from the first call as a
// *ConfigError before anything is sent.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		extractor: cfg.extractor(),
		requestID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}

	switch cfg.Variant {
	case VariantToken:
		c.auth = staticAuthorizer{value: cfg.Token}
	case VariantOAuth:
		c.auth = newClientCredentials(c)
	default:
		return nil, &ConfigError{Field: "variant", Message: fmt.Sprintf("unknown variant %q", cfg.Variant)}
	}

	if cfg.Selector != "" {
		selector, err := jmespath.Compile(cfg.Selector)
		if err != nil {
			return nil, &ConfigError{Field: "selector", Message: fmt.Sprintf("invalid expression %q", cfg.Selector), Err: err}
		}
		c.selector = selector
	}

	return c, nil
}

// Variant reports which authentication variant the client uses.
func (c *Client) Variant() Variant {
	return c.cfg.Variant
}

// FetchTodayWords returns the words scheduled for review today.
func (c *Client) FetchTodayWords(ctx context.Context) ([]string, error) {
	return c.fetch(ctx, ResolveURL(c.cfg.BaseURL, c.cfg.TodayPath))
}

// FetchWordsForDate returns the words for date. The date string is passed
// through as the "date" query parameter without validation.
func (c *Client) FetchWordsForDate(ctx context.Context, date string) ([]string, error) {
	endpoint, err := withQuery(ResolveURL(c.cfg.BaseURL, c.cfg.DatePath), "date", date)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, endpoint)
}

// ResolveToken returns the bearer token used for requests, acquiring it
// first if the variant requires it. The token variant returns the static
// token, which may be empty.
func (c *Client) ResolveToken(ctx context.Context) (string, error) {
	token, err := c.Token(ctx)
	if err != nil || token == nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Token is like ResolveToken but returns the full token, including the
// expiry reported by the token endpoint when one was exchanged.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	return c.auth.token(ctx)
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]string, error) {
	// Token resolution happens first so that its failure aborts the call
	// before the GET is attempted.
	token, err := c.auth.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ConfigError{Field: "endpoint", Message: fmt.Sprintf("invalid URL %q", endpoint), Err: err}
	}
	if token != nil && token.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{URL: req.URL.Redacted(), Err: err}
	}

	if c.selector != nil {
		payload, err = c.selector.Search(payload)
		if err != nil {
			return nil, &ParseError{URL: req.URL.Redacted(), Err: fmt.Errorf("selector %q: %w", c.cfg.Selector, err)}
		}
	}

	return c.extractor.Extract(payload), nil
}
