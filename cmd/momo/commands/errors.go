package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zd20000723-dot/momo/internal/app"
	"github.com/zd20000723-dot/momo/internal/translate"
	"github.com/zd20000723-dot/momo/internal/wordsource"
)

// Hint returns a short remediation for well-known failures, or "".
func Hint(err error) string {
	var (
		cfgErr   *wordsource.ConfigError
		netErr   *wordsource.NetworkError
		httpErr  *wordsource.HTTPError
		parseErr *wordsource.ParseError
		authErr  *wordsource.AuthResponseError
		trErr    *translate.Error
	)

	switch {
	case errors.Is(err, app.ErrNoWords):
		return "No words found for that day. Pass --date or --words to pick another list."
	case errors.As(err, &cfgErr):
		if cfgErr.Field == "credentials" {
			return "OAuth mode needs --client-id and --client-secret, --access-token, or a token saved with `momo auth login`."
		}
		return fmt.Sprintf("Check the %s setting.", cfgErr.Field)
	case errors.As(err, &authErr):
		return "The token endpoint answered without an access token. Verify --token-endpoint and the client credentials."
	case errors.As(err, &httpErr):
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "The API rejected the credentials. Check MOMO_API_TOKEN or run `momo auth login` again."
		case http.StatusNotFound:
			return "Endpoint not found. Check --base-url and the endpoint paths."
		}
		return ""
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "The request timed out. Raise --timeout or check connectivity."
		}
		return "Could not reach the API. Check --base-url and your network connection."
	case errors.As(err, &parseErr):
		return "The response was not the expected JSON. Try --selector to point at the word list."
	case errors.As(err, &trErr):
		return "Translation failed. Use --translate-url to pick another LibreTranslate instance or --no-translate to skip it."
	}
	return ""
}

// PrintHint writes the hint for err to w, if there is one.
func PrintHint(w io.Writer, err error) {
	if hint := Hint(err); hint != "" {
		fmt.Fprintln(w, "hint:", hint)
	}
}
