// Package translate talks to LibreTranslate-compatible endpoints to move text
// between English and Chinese.
package translate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultURL is the public LibreTranslate instance used when none is set.
const DefaultURL = "https://translate.argosopentech.com/translate"

// DefaultTimeout bounds a translation request.
const DefaultTimeout = 15 * time.Second

// Direction selects source and target language.
type Direction string

const (
	// EnglishToChinese translates English text into Chinese.
	EnglishToChinese Direction = "en2zh"
	// ChineseToEnglish translates Chinese text into English.
	ChineseToEnglish Direction = "zh2en"
)

// ParseDirection validates a direction flag.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case EnglishToChinese, ChineseToEnglish:
		return d, nil
	default:
		return "", fmt.Errorf("unknown direction %q (expected: en2zh, zh2en)", s)
	}
}

// Languages returns the LibreTranslate source and target codes.
func (d Direction) Languages() (source, target string) {
	if d == ChineseToEnglish {
		return "zh", "en"
	}
	return "en", "zh"
}

// Error is returned when the translation service rejects a request or
// answers with something that is not a translation.
type Error struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode >= 400 {
		return fmt.Sprintf("translation failed with status %d: %s", e.StatusCode, e.Body)
	}
	return "translation failed: " + e.Message
}

// Client calls a LibreTranslate /translate endpoint.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithAPIKey sends api_key with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client for url, or DefaultURL when url is empty.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate translates text in the given direction.
func (c *Client) Translate(ctx context.Context, text string, dir Direction) (string, error) {
	source, target := dir.Languages()
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling translate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading translate response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out translateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	if out.TranslatedText == "" {
		return "", &Error{StatusCode: resp.StatusCode, Message: "response missing 'translatedText' field"}
	}

	return out.TranslatedText, nil
}
