// Package wordsource retrieves daily vocabulary words from a MoMo-style
// review service.
//
// The upstream exists in two shapes that this package hides behind one
// Client:
//   - VariantToken sends a static bearer token (or none) with every request
//   - VariantOAuth exchanges client credentials for an access token on first
//     use and reuses it for the lifetime of the Client
//
// Both variants decode the response body as JSON and normalize it with an
// Extractor, which tolerates the loosely specified payload shapes the service
// returns ({"data": [...]}, {"words": [{"content": ...}]}, bare lists, ...).
//
// # Usage
//
//	client, err := wordsource.New(wordsource.Config{
//	  Variant:      wordsource.VariantOAuth,
//	  BaseURL:      "https://api.maimemo.com",
//	  ClientID:     id,
//	  ClientSecret: secret,
//	})
//	words, err := client.FetchTodayWords(ctx)
//
// # Errors
//
// Failures surface as one of *ConfigError, *NetworkError, *HTTPError,
// *ParseError or *AuthResponseError. Nothing is retried.
package wordsource
