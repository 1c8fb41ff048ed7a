package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/zd20000723-dot/momo/internal/reading"
	"github.com/zd20000723-dot/momo/internal/translate"
	"github.com/zd20000723-dot/momo/internal/wordsource"
)

// Config is the fully resolved application configuration.
type Config struct {
	WordSource WordSourceConfig `koanf:"wordsource"`
	Translate  TranslateConfig  `koanf:"translate"`
	Reading    ReadingConfig    `koanf:"reading"`
	Auth       AuthConfig       `koanf:"auth"`
}

// WordSourceConfig configures the MoMo API client.
type WordSourceConfig struct {
	AuthMode     string        `koanf:"auth_mode" validate:"oneof=token oauth"`
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	TodayPath    string        `koanf:"today_path" validate:"required"`
	DatePath     string        `koanf:"date_path" validate:"required"`
	TokenPath    string        `koanf:"token_path" validate:"required"`
	Token        string        `koanf:"token"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	AccessToken  string        `koanf:"access_token"`
	ExtractMode  string        `koanf:"extract_mode" validate:"omitempty,oneof=falsy nil"`
	MaxDepth     int           `koanf:"max_depth" validate:"gte=0"`
	Selector     string        `koanf:"selector"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0,lte=1m"`
}

// TranslateConfig configures the LibreTranslate endpoint.
type TranslateConfig struct {
	URL       string `koanf:"url" validate:"required,url"`
	APIKey    string `koanf:"api_key"`
	Direction string `koanf:"direction" validate:"oneof=en2zh zh2en"`
	Disabled  bool   `koanf:"disabled"`
}

// ReadingConfig configures passage generation.
type ReadingConfig struct {
	Sentences int `koanf:"sentences" validate:"gte=1,lte=100"`
	Width     int `koanf:"width" validate:"gte=0"`
}

// AuthConfig selects where the OAuth access token is kept between runs.
type AuthConfig struct {
	Storage TokenStorageType `koanf:"storage" validate:"oneof=env file keyring"`
	File    string           `koanf:"file"`
}

// envKeys maps supported environment variables to config keys.
var envKeys = map[string]string{
	"MOMO_API_BASE":           "wordsource.base_url",
	"MOMO_API_TOKEN":          "wordsource.token",
	"MOMO_DAILY_ENDPOINT":     "wordsource.today_path",
	"MOMO_DATE_ENDPOINT":      "wordsource.date_path",
	"MOMO_TOKEN_ENDPOINT":     "wordsource.token_path",
	"MOMO_AUTH_MODE":          "wordsource.auth_mode",
	"MOMO_CLIENT_ID":          "wordsource.client_id",
	"MOMO_CLIENT_SECRET":      "wordsource.client_secret",
	"MOMO_ACCESS_TOKEN":       "wordsource.access_token",
	"MOMO_EXTRACT_MODE":       "wordsource.extract_mode",
	"MOMO_WORDS_SELECTOR":     "wordsource.selector",
	"MOMO_TIMEOUT":            "wordsource.timeout",
	"MOMO_TOKEN_STORAGE":      "auth.storage",
	"MOMO_TOKEN_FILE":         "auth.file",
	"LIBRE_TRANSLATE_URL":     "translate.url",
	"LIBRE_TRANSLATE_API_KEY": "translate.api_key",
}

func defaults() map[string]any {
	return map[string]any{
		"wordsource.auth_mode":  string(wordsource.VariantToken),
		"wordsource.base_url":   wordsource.DefaultBaseURL,
		"wordsource.today_path": wordsource.DefaultTodayPath,
		"wordsource.date_path":  wordsource.DefaultDatePath,
		"wordsource.token_path": wordsource.DefaultTokenPath,
		"wordsource.max_depth":  wordsource.DefaultMaxDepth,
		"wordsource.timeout":    wordsource.DefaultTimeout,
		"translate.url":         translate.DefaultURL,
		"translate.direction":   string(translate.EnglishToChinese),
		"reading.sentences":     6,
		"reading.width":         reading.DefaultWidth,
		"auth.storage":          string(TokenStorageTypeEnv),
	}
}

// DefaultConfigPath returns the config file read when none is given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "momo", "config.toml")
}

// LoadConfig resolves configuration from, in increasing precedence:
// defaults, the TOML or YAML file at path (or DefaultConfigPath when it exists),
// environment variables from environ, and overrides keyed by config path
// (e.g. "wordsource.base_url") which carry explicit command-line values.
func LoadConfig(path string, overrides map[string]any, environ func() []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		if p := DefaultConfigPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("checking config file: %w", err)
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			if value == "" {
				return "", nil
			}
			return envKeys[key], value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("loading overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			errs := make([]error, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %w", errors.Join(errs...))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ClientConfig converts the word source section for wordsource.New.
func (c *Config) ClientConfig() (wordsource.Config, error) {
	ws := c.WordSource

	variant, err := wordsource.ParseVariant(ws.AuthMode)
	if err != nil {
		return wordsource.Config{}, err
	}

	cfg := wordsource.Config{
		Variant:      variant,
		BaseURL:      ws.BaseURL,
		TodayPath:    ws.TodayPath,
		DatePath:     ws.DatePath,
		TokenPath:    ws.TokenPath,
		Token:        ws.Token,
		ClientID:     ws.ClientID,
		ClientSecret: ws.ClientSecret,
		AccessToken:  ws.AccessToken,
		MaxDepth:     ws.MaxDepth,
		Selector:     ws.Selector,
		Timeout:      ws.Timeout,
	}

	if ws.ExtractMode != "" {
		mode, err := wordsource.ParseExtractMode(ws.ExtractMode)
		if err != nil {
			return wordsource.Config{}, err
		}
		cfg.ExtractMode = &mode
	}

	return cfg, nil
}
