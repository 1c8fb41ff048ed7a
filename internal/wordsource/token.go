package wordsource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// authorizer supplies the bearer token for outbound requests.
type authorizer interface {
	token(ctx context.Context) (*oauth2.Token, error)
}

// staticAuthorizer backs VariantToken. An empty token means requests go out
// without an Authorization header.
type staticAuthorizer struct {
	value string
}

func (a staticAuthorizer) token(context.Context) (*oauth2.Token, error) {
	if a.value == "" {
		return nil, nil
	}
	return &oauth2.Token{AccessToken: a.value, TokenType: "Bearer"}, nil
}

// clientCredentials backs VariantOAuth. The endpoint is form-encoded per
// RFC 6749 section 4.4 with credentials in the body rather than basic auth.
// The acquired token is cached for the lifetime of the owning Client; expiry
// is not tracked and a rejected token is not refreshed.
type clientCredentials struct {
	client       *Client
	endpoint     oauth2.Endpoint
	clientID     string
	clientSecret string
	cached       *oauth2.Token
}

func newClientCredentials(c *Client) *clientCredentials {
	cc := &clientCredentials{
		client: c,
		endpoint: oauth2.Endpoint{
			TokenURL:  ResolveURL(c.cfg.BaseURL, c.cfg.TokenPath),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		clientID:     c.cfg.ClientID,
		clientSecret: c.cfg.ClientSecret,
	}
	if c.cfg.AccessToken != "" {
		cc.cached = &oauth2.Token{AccessToken: c.cfg.AccessToken, TokenType: "Bearer"}
	}
	return cc
}

func (cc *clientCredentials) token(ctx context.Context) (*oauth2.Token, error) {
	if cc.cached != nil {
		return cc.cached, nil
	}

	if cc.clientID == "" || cc.clientSecret == "" {
		return nil, &ConfigError{
			Field:   "credentials",
			Message: "oauth requires an access token or both client id and client secret",
		}
	}

	token, err := cc.exchange(ctx)
	if err != nil {
		return nil, err
	}
	cc.cached = token
	return token, nil
}

// exchange performs a single client-credentials grant.
func (cc *clientCredentials) exchange(ctx context.Context) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {cc.clientID},
		"client_secret": {cc.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cc.endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ConfigError{Field: "token endpoint", Message: "creating token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	now := time.Now()
	body, err := cc.client.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{URL: req.URL.Redacted(), Err: err}
	}

	accessToken, ok := resp.AccessToken.(string)
	if !ok || accessToken == "" {
		return nil, &AuthResponseError{URL: req.URL.Redacted(), Message: "missing access_token"}
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    stringField(resp.TokenType),
		RefreshToken: stringField(resp.RefreshToken),
		ExpiresIn:    expiresIn(resp.ExpiresIn),
	}

	// Convert ExpiresIn to Expiry (see oauth2.Token.ExpiresIn field documentation)
	if token.ExpiresIn > 0 {
		token.Expiry = now.Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return token, nil
}

// tokenResponse is the token endpoint body. Fields are loosely typed since
// servers disagree on them, most commonly sending expires_in as a string.
type tokenResponse struct {
	AccessToken  any `json:"access_token"`
	TokenType    any `json:"token_type"`
	RefreshToken any `json:"refresh_token"`
	ExpiresIn    any `json:"expires_in"`
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

// expiresIn reads a lifetime in seconds sent as a JSON number or numeric
// string. Anything else counts as unknown.
func expiresIn(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	default:
		return 0
	}
}
