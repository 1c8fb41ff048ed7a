package wordsource

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 8 << 20

// do sends req with the client's timeout and returns the body of a 2xx
// response. Transport failures become *NetworkError, other statuses
// *HTTPError.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req = req.WithContext(ctx)

	req.Header.Set("Accept", "application/json")
	// Asking explicitly disables the transport's transparent decompression,
	// so gzip bodies are always decoded below.
	req.Header.Set("Accept-Encoding", "gzip")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.requestID != nil {
		req.Header.Set("X-Request-ID", c.requestID())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if resp.Header.Get("Content-Encoding") == "gzip" {
		// A failed response with a corrupt body keeps its raw bytes.
		decoded, err := gunzip(body)
		switch {
		case err == nil:
			body = decoded
		case ok:
			return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
		}
	}

	if !ok {
		return nil, &HTTPError{
			Method:     req.Method,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	return body, nil
}

func gunzip(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = gz.Close() }()
	return io.ReadAll(io.LimitReader(gz, maxBodyBytes))
}
