package wordsource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransport records requests without touching the network.
type countingTransport struct {
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"data": []}`)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

// wordServer is a fake MoMo API with a token endpoint.
type wordServer struct {
	*httptest.Server
	tokenCalls atomic.Int32
	lastAuth   atomic.Value
	lastQuery  atomic.Value
	tokenBody  string
}

func newWordServer(t *testing.T) *wordServer {
	t.Helper()
	ws := &wordServer{tokenBody: `{"access_token": "t1", "token_type": "Bearer", "expires_in": 3600}`}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		ws.tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "client_credentials" ||
			r.PostForm.Get("client_id") != "id" ||
			r.PostForm.Get("client_secret") != "secret" {
			http.Error(w, `{"error": "invalid_client"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, ws.tokenBody)
	})
	mux.HandleFunc("GET /v2/review/today-words", func(w http.ResponseWriter, r *http.Request) {
		ws.lastAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data": [{"word": "apple"}, {"content": "banana"}]}`)
	})
	mux.HandleFunc("GET /v2/review/words-by-date", func(w http.ResponseWriter, r *http.Request) {
		ws.lastAuth.Store(r.Header.Get("Authorization"))
		ws.lastQuery.Store(r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"words": ["cherry", "date"]}`)
	})
	ws.Server = httptest.NewServer(mux)
	t.Cleanup(ws.Close)
	return ws
}

func TestTokenVariant(t *testing.T) {
	srv := newWordServer(t)

	t.Run("sends static token", func(t *testing.T) {
		client, err := New(Config{BaseURL: srv.URL, Token: "static"})
		require.NoError(t, err)

		words, err := client.FetchTodayWords(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"apple", "banana"}, words)
		assert.Equal(t, "Bearer static", srv.lastAuth.Load())
		assert.Zero(t, srv.tokenCalls.Load())
	})

	t.Run("empty token sends no header", func(t *testing.T) {
		client, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "", srv.lastAuth.Load())

		token, err := client.ResolveToken(context.Background())
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("date passed through", func(t *testing.T) {
		client, err := New(Config{BaseURL: srv.URL + "/", DatePath: "v2/review/words-by-date"})
		require.NoError(t, err)

		words, err := client.FetchWordsForDate(context.Background(), "not-a-date")
		require.NoError(t, err)
		assert.Equal(t, []string{"cherry", "date"}, words)
		assert.Equal(t, "not-a-date", srv.lastQuery.Load())
	})
}

func TestOAuthVariant(t *testing.T) {
	t.Run("token exchanged once per client", func(t *testing.T) {
		srv := newWordServer(t)
		client, err := New(Config{
			Variant:      VariantOAuth,
			BaseURL:      srv.URL,
			ClientID:     "id",
			ClientSecret: "secret",
		})
		require.NoError(t, err)

		words, err := client.FetchTodayWords(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"apple", "banana"}, words)
		assert.EqualValues(t, 1, srv.tokenCalls.Load())
		assert.Equal(t, "Bearer t1", srv.lastAuth.Load())

		_, err = client.FetchWordsForDate(context.Background(), "2024-06-01")
		require.NoError(t, err)
		_, err = client.ResolveToken(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 1, srv.tokenCalls.Load())
		assert.Equal(t, "2024-06-01", srv.lastQuery.Load())

		token, err := client.Token(context.Background())
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, time.Minute)
	})

	t.Run("cache is per instance", func(t *testing.T) {
		srv := newWordServer(t)
		cfg := Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"}
		for range 2 {
			client, err := New(cfg)
			require.NoError(t, err)
			_, err = client.FetchTodayWords(context.Background())
			require.NoError(t, err)
		}
		assert.EqualValues(t, 2, srv.tokenCalls.Load())
	})

	t.Run("pre-supplied access token skips exchange", func(t *testing.T) {
		srv := newWordServer(t)
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, AccessToken: "given"})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		require.NoError(t, err)
		assert.Zero(t, srv.tokenCalls.Load())
		assert.Equal(t, "Bearer given", srv.lastAuth.Load())
	})

	t.Run("missing credentials fail before any request", func(t *testing.T) {
		transport := &countingTransport{}
		for _, cfg := range []Config{
			{Variant: VariantOAuth},
			{Variant: VariantOAuth, ClientID: "id"},
			{Variant: VariantOAuth, ClientSecret: "secret"},
		} {
			client, err := New(cfg, WithHTTPClient(&http.Client{Transport: transport}))
			require.NoError(t, err)

			_, err = client.ResolveToken(context.Background())
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)

			_, err = client.FetchTodayWords(context.Background())
			require.ErrorAs(t, err, &cfgErr)
		}
		assert.Zero(t, transport.calls.Load())
	})

	t.Run("token response without access_token", func(t *testing.T) {
		srv := newWordServer(t)
		srv.tokenBody = `{"token_type": "Bearer"}`
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var authErr *AuthResponseError
		require.ErrorAs(t, err, &authErr)
		assert.Nil(t, srv.lastAuth.Load(), "data endpoint must not be called")
	})

	t.Run("token response with non-string access_token", func(t *testing.T) {
		srv := newWordServer(t)
		srv.tokenBody = `{"access_token": 123}`
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)

		_, err = client.ResolveToken(context.Background())
		var authErr *AuthResponseError
		require.ErrorAs(t, err, &authErr)
	})

	t.Run("expires_in sent as string", func(t *testing.T) {
		srv := newWordServer(t)
		srv.tokenBody = `{"access_token": "t1", "expires_in": "3600"}`
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)

		words, err := client.FetchTodayWords(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"apple", "banana"}, words)

		token, err := client.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3600), token.ExpiresIn)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, time.Minute)
	})

	t.Run("unparseable expires_in is ignored", func(t *testing.T) {
		srv := newWordServer(t)
		srv.tokenBody = `{"access_token": "t1", "expires_in": "soon"}`
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)

		token, err := client.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "t1", token.AccessToken)
		assert.True(t, token.Expiry.IsZero())
	})

	t.Run("token endpoint rejects credentials", func(t *testing.T) {
		srv := newWordServer(t)
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "wrong"})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
		assert.Contains(t, string(httpErr.Body), "invalid_client")
		assert.Nil(t, srv.lastAuth.Load())
	})

	t.Run("token endpoint returns invalid json", func(t *testing.T) {
		srv := newWordServer(t)
		srv.tokenBody = `not json`
		client, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)

		_, err = client.ResolveToken(context.Background())
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})
}

func TestFetchErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
		assert.Equal(t, "quota exceeded\n", string(httpErr.Body))
	})

	t.Run("http status with corrupt gzip body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		}))
		defer srv.Close()

		client, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
		assert.Equal(t, "upstream down", string(httpErr.Body))
	})

	t.Run("corrupt gzip body on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = io.WriteString(w, "not gzip")
		}))
		defer srv.Close()

		client, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>oops</html>")
		}))
		defer srv.Close()

		client, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Error(t, parseErr.Unwrap())
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		client, err := New(Config{BaseURL: addr})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.False(t, netErr.Timeout())
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		_, err = client.FetchTodayWords(context.Background())
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, netErr.Timeout())
	})
}

func TestFetchHeadersAndEncoding(t *testing.T) {
	var gotRequestID, gotAccept, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`["zipped"]`))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client, err := New(
		Config{BaseURL: srv.URL, UserAgent: "momo/test"},
		WithRequestIDFunc(func() string { return "req-1" }),
	)
	require.NoError(t, err)

	words, err := client.FetchTodayWords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"zipped"}, words)
	assert.Equal(t, "req-1", gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "momo/test", gotAgent)
}

func TestSelector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result": {"items": [{"voc": {"spelling": "kiwi"}}, {"voc": {"spelling": "lime"}}]}}`)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, Selector: "result.items[].voc.spelling"})
	require.NoError(t, err)

	words, err := client.FetchTodayWords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"kiwi", "lime"}, words)

	_, err = New(Config{Selector: "[[["})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	_, err := New(Config{Variant: "basic"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestExtractModeOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": 0, "word": "x"}`)
	}))
	defer srv.Close()

	tokenClient, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	words, err := tokenClient.FetchTodayWords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, words)

	oauthClient, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, AccessToken: "a"})
	require.NoError(t, err)
	words, err = oauthClient.FetchTodayWords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, words)

	falsy := ModeFalsy
	overridden, err := New(Config{Variant: VariantOAuth, BaseURL: srv.URL, AccessToken: "a", ExtractMode: &falsy})
	require.NoError(t, err)
	words, err = overridden.FetchTodayWords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, words)
}
