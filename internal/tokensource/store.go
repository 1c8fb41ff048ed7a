package tokensource

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by stores that cannot persist tokens.
var ErrReadOnly = errors.New("token store is read-only")

// Store reads and writes a single access token. Read returns "" without an
// error when nothing is stored.
type Store interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
}

// EnvStore serves a token resolved from configuration or the environment.
type EnvStore struct {
	Token string
}

var _ Store = EnvStore{}

// Read returns the configured token.
func (s EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Token, nil
}

// Write always fails; environment-provided tokens are managed outside momo.
func (EnvStore) Write(context.Context, string) error {
	return ErrReadOnly
}
