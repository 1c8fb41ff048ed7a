package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zd20000723-dot/momo/internal/tokensource"
)

// TokenStorageType selects the tokensource backend.
type TokenStorageType string

const (
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// keyringService is the service name tokens are stored under in the OS keyring.
const keyringService = "momo"

// NewTokenStore creates the token store selected by Auth.Storage. Keyring
// entries are keyed by client id so several API clients can coexist.
func (c *Config) NewTokenStore() (tokensource.Store, error) {
	switch c.Auth.Storage {
	case TokenStorageTypeEnv, "":
		return tokensource.EnvStore{Token: c.WordSource.AccessToken}, nil
	case TokenStorageTypeFile:
		path := c.Auth.File
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("locating config directory: %w", err)
			}
			path = filepath.Join(dir, "momo", "token")
		}
		return tokensource.NewFileStore(path), nil
	case TokenStorageTypeKeyring:
		user := c.WordSource.ClientID
		if user == "" {
			user = "default"
		}
		return tokensource.NewKeyringStore(keyringService, user), nil
	default:
		return nil, fmt.Errorf("unknown token storage %q", c.Auth.Storage)
	}
}

// storedAccessToken fills in a persisted access token for the OAuth client
// when none was configured explicitly.
func (c *Config) storedAccessToken(ctx context.Context) (string, error) {
	if c.WordSource.AccessToken != "" || c.Auth.Storage == TokenStorageTypeEnv {
		return c.WordSource.AccessToken, nil
	}
	store, err := c.NewTokenStore()
	if err != nil {
		return "", err
	}
	token, err := store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("reading stored token: %w", err)
	}
	return token, nil
}
