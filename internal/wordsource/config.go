package wordsource

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Variant selects how the client authenticates against the word source.
type Variant string

const (
	// VariantToken sends an optional static bearer token.
	VariantToken Variant = "token"
	// VariantOAuth obtains a bearer token through the client-credentials grant.
	VariantOAuth Variant = "oauth"
)

// Defaults for the public MoMo open API.
const (
	DefaultBaseURL   = "https://api.maimemo.com"
	DefaultTodayPath = "/v2/review/today-words"
	DefaultDatePath  = "/v2/review/words-by-date"
	DefaultTokenPath = "/oauth/token"
	DefaultTimeout   = 10 * time.Second
)

// Config is resolved once by the caller and passed to New. Empty fields fall
// back to the package defaults; nothing is read from the environment here.
type Config struct {
	Variant Variant

	BaseURL   string
	TodayPath string
	DatePath  string
	TokenPath string

	// Token is the static bearer token for VariantToken. May be empty.
	Token string

	// ClientID and ClientSecret are exchanged for an access token by
	// VariantOAuth unless AccessToken is already set.
	ClientID     string
	ClientSecret string
	AccessToken  string

	// ExtractMode overrides the variant's default payload extraction mode.
	ExtractMode *ExtractMode
	MaxDepth    int

	// Selector is an optional JMESPath expression evaluated against the
	// decoded payload before word extraction.
	Selector string

	// Timeout bounds every outbound request. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string
}

// withDefaults returns a copy with empty fields filled in.
func (c Config) withDefaults() Config {
	if c.Variant == "" {
		c.Variant = VariantToken
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TodayPath == "" {
		c.TodayPath = DefaultTodayPath
	}
	if c.DatePath == "" {
		c.DatePath = DefaultDatePath
	}
	if c.TokenPath == "" {
		c.TokenPath = DefaultTokenPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// extractor returns the extractor for the configured variant. The token
// variant treats any falsy "data" as absent, the OAuth variant only null.
// ExtractMode overrides either default.
func (c Config) extractor() Extractor {
	mode := ModeFalsy
	if c.Variant == VariantOAuth {
		mode = ModeNil
	}
	if c.ExtractMode != nil {
		mode = *c.ExtractMode
	}
	return Extractor{Mode: mode, MaxDepth: c.MaxDepth}
}

// ParseVariant maps a configuration string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case "", VariantToken:
		return VariantToken, nil
	case VariantOAuth:
		return VariantOAuth, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q (expected: token, oauth)", s)
	}
}

// ResolveURL joins endpoint to base with exactly one slash. An endpoint
// starting with "http" is already absolute and returned unchanged.
func ResolveURL(base, endpoint string) string {
	if strings.HasPrefix(endpoint, "http") {
		return endpoint
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// withQuery adds key=value to the query of rawURL, keeping existing params.
func withQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &ConfigError{Field: "endpoint", Message: fmt.Sprintf("invalid URL %q", rawURL), Err: err}
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
