package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zd20000723-dot/momo/internal/observability/middleware"
	"github.com/zd20000723-dot/momo/internal/reading"
	"github.com/zd20000723-dot/momo/internal/translate"
	"github.com/zd20000723-dot/momo/internal/wordsource"
)

// ErrNoWords is returned when neither the word source nor the caller
// supplied any words.
var ErrNoWords = errors.New("no words retrieved")

// WordSource fetches vocabulary lists.
type WordSource interface {
	FetchTodayWords(ctx context.Context) ([]string, error)
	FetchWordsForDate(ctx context.Context, date string) ([]string, error)
}

// Translator translates generated passages.
type Translator interface {
	Translate(ctx context.Context, text string, dir translate.Direction) (string, error)
}

// Compile-time checks for the production implementations
var (
	_ WordSource = (*wordsource.Client)(nil)
	_ Translator = (*translate.Client)(nil)
)

// App runs the words -> passage -> translation pipeline.
type App struct {
	cfg        *Config
	words      WordSource
	translator Translator
}

// Option customizes an App.
type Option func(*App)

// WithWordSource replaces the word source built from configuration.
func WithWordSource(ws WordSource) Option {
	return func(a *App) {
		a.words = ws
	}
}

// WithTranslator replaces the translator built from configuration.
func WithTranslator(t Translator) Option {
	return func(a *App) {
		a.translator = t
	}
}

// New creates an App from cfg. For the OAuth variant a token persisted by
// `momo auth login` is used when no access token is configured.
func New(ctx context.Context, cfg *Config, userAgent string, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.words == nil {
		client, err := NewWordSourceClient(ctx, cfg, userAgent)
		if err != nil {
			return nil, err
		}
		a.words = client
	}

	if a.translator == nil {
		a.translator = translate.New(cfg.Translate.URL,
			translate.WithAPIKey(cfg.Translate.APIKey),
			translate.WithHTTPClient(NewHTTPClient(translate.DefaultTimeout)),
		)
	}

	return a, nil
}

// NewWordSourceClient builds the word source client described by cfg.
func NewWordSourceClient(ctx context.Context, cfg *Config, userAgent string) (*wordsource.Client, error) {
	wsCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("word source config: %w", err)
	}
	wsCfg.UserAgent = userAgent

	if wsCfg.Variant == wordsource.VariantOAuth {
		token, err := cfg.storedAccessToken(ctx)
		if err != nil {
			return nil, err
		}
		wsCfg.AccessToken = token
	}

	client, err := wordsource.New(wsCfg, wordsource.WithHTTPClient(NewHTTPClient(wsCfg.Timeout)))
	if err != nil {
		return nil, fmt.Errorf("failed to create word source client: %w", err)
	}
	return client, nil
}

// NewHTTPClient returns a client whose outbound calls carry request IDs and
// are logged.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: middleware.Chain(slog.Default().With("component", "http"), http.DefaultTransport),
	}
}

// Request describes one pipeline run.
type Request struct {
	// Date selects a specific day (YYYY-MM-DD); empty means today.
	Date string
	// Words bypasses the word source when non-empty.
	Words []string
	// Sentences and Direction override the configured values when set.
	Sentences int
	Direction translate.Direction
	// Output, when set, is a file the rendered result is also written to.
	Output string
}

// Result is the outcome of a pipeline run.
type Result struct {
	Words       []string
	Passage     string
	Translation string
}

// Render formats the result as the plain-text report printed by the CLI.
func (r *Result) Render() string {
	sections := []string{
		"=== Words ===",
		strings.Join(r.Words, ", "),
		"\n=== Generated Reading ===",
		r.Passage,
	}
	if r.Translation != "" {
		sections = append(sections, "\n=== Translation ===", r.Translation)
	}
	return strings.Join(sections, "\n")
}

// Run loads words, generates a passage and translates it.
func (a *App) Run(ctx context.Context, req Request) (*Result, error) {
	words := req.Words
	if len(words) == 0 {
		var err error
		words, err = a.Words(ctx, req.Date)
		if err != nil {
			return nil, err
		}
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	sentences := a.cfg.Reading.Sentences
	if req.Sentences > 0 {
		sentences = req.Sentences
	}
	passage := reading.Generate(words, sentences, reading.WithWidth(a.cfg.Reading.Width))
	slog.DebugContext(ctx, "generated passage", "sentences", sentences, "chars", len(passage))

	result := &Result{Words: words, Passage: passage}

	if !a.cfg.Translate.Disabled && passage != "" {
		dir := req.Direction
		if dir == "" {
			var err error
			if dir, err = translate.ParseDirection(a.cfg.Translate.Direction); err != nil {
				return nil, err
			}
		}
		translated, err := a.translator.Translate(ctx, passage, dir)
		if err != nil {
			return nil, fmt.Errorf("translating passage: %w", err)
		}
		result.Translation = translated
		slog.DebugContext(ctx, "translated passage", "direction", dir)
	}

	if req.Output != "" {
		if err := os.WriteFile(req.Output, []byte(result.Render()+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
		slog.InfoContext(ctx, "saved result", "path", req.Output)
	}

	return result, nil
}

// Words fetches the word list for date, or today's list when date is empty.
func (a *App) Words(ctx context.Context, date string) ([]string, error) {
	var (
		words []string
		err   error
	)
	if date != "" {
		words, err = a.words.FetchWordsForDate(ctx, date)
	} else {
		words, err = a.words.FetchTodayWords(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching words: %w", err)
	}

	slog.DebugContext(ctx, "fetched words", "count", len(words), "date", date)
	return words, nil
}

// ParseWordList splits a comma-separated list, trimming blanks.
func ParseWordList(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
