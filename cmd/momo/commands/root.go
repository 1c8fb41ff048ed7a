package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zd20000723-dot/momo/internal/app"
	"github.com/zd20000723-dot/momo/internal/observability"
	"github.com/zd20000723-dot/momo/internal/translate"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, version, commit string) error {
	return newRootCommand(version, commit).Run(ctx, args)
}

func newRootCommand(version, commit string) *cli.Command {
	var shutdown func(context.Context) error

	return &cli.Command{
		Name:           "momo",
		Usage:          "Turn today's MoMo vocabulary into a short reading passage",
		Version:        fmt.Sprintf("%s (%s)", version, commit),
		DefaultCommand: "read",
		Writer:         os.Stdout,
		ErrWriter:      os.Stderr,
		Flags:          globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var level slog.Level
			if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return ctx, err
			}

			// Set up observability before creating app
			var err error
			shutdown, err = observability.Instrument(ctx, level, cmd.String("log-format"))
			if err != nil {
				return ctx, fmt.Errorf("failed to set up observability layer: %w", err)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(context.WithoutCancel(ctx))
		},
		Commands: []*cli.Command{
			readCommand(),
			wordsCommand(),
			authCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a TOML or YAML config file (default: " + app.DefaultConfigPath() + " when present)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug|info|warn|error)",
			Value: slog.LevelWarn.String(),
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (text|json|otel|otlp)",
			Value: "text",
		},
		&cli.StringFlag{Name: "base-url", Usage: "MoMo API base URL"},
		&cli.StringFlag{Name: "token", Usage: "static API token (token auth mode)"},
		&cli.StringFlag{Name: "daily-endpoint", Usage: "path or URL of the today's-words endpoint"},
		&cli.StringFlag{Name: "date-endpoint", Usage: "path or URL of the words-by-date endpoint"},
		&cli.StringFlag{Name: "token-endpoint", Usage: "path or URL of the OAuth token endpoint"},
		&cli.StringFlag{Name: "auth-mode", Usage: "authentication mode (token|oauth)"},
		&cli.StringFlag{Name: "client-id", Usage: "OAuth client id"},
		&cli.StringFlag{Name: "client-secret", Usage: "OAuth client secret"},
		&cli.StringFlag{Name: "access-token", Usage: "pre-issued OAuth access token"},
		&cli.StringFlag{Name: "extract-mode", Usage: "how an empty \"data\" field is treated (falsy|nil)"},
		&cli.StringFlag{Name: "selector", Usage: "JMESPath expression applied to the response before extraction"},
		&cli.DurationFlag{Name: "timeout", Usage: "word source request timeout"},
		&cli.StringFlag{Name: "token-storage", Usage: "where OAuth tokens are kept (env|file|keyring)"},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Fetch words, generate a passage and translate it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "study date (YYYY-MM-DD); defaults to today"},
			&cli.StringFlag{Name: "words", Usage: "comma-separated words to use instead of the API"},
			&cli.IntFlag{Name: "sentences", Usage: "number of sentences in the passage"},
			&cli.StringFlag{Name: "direction", Usage: "translation direction (en2zh|zh2en)"},
			&cli.StringFlag{Name: "translate-url", Usage: "LibreTranslate /translate endpoint"},
			&cli.BoolFlag{Name: "no-translate", Usage: "skip the translation step"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "also write the result to this file"},
		},
		Action: readAction,
	}
}

func readAction(ctx context.Context, cmd *cli.Command) error {
	application, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}

	req := app.Request{
		Date:      cmd.String("date"),
		Words:     app.ParseWordList(cmd.String("words")),
		Sentences: cmd.Int("sentences"),
		Output:    cmd.String("output"),
	}
	if cmd.IsSet("direction") {
		if req.Direction, err = translate.ParseDirection(cmd.String("direction")); err != nil {
			return err
		}
	}

	result, err := application.Run(ctx, req)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, result.Render())
	return err
}

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:  "words",
		Usage: "Print the word list, one word per line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "study date (YYYY-MM-DD); defaults to today"},
		},
		Action: wordsAction,
	}
}

func wordsAction(ctx context.Context, cmd *cli.Command) error {
	application, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}

	words, err := application.Words(ctx, cmd.String("date"))
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return app.ErrNoWords
	}

	for _, w := range words {
		if _, err := fmt.Fprintln(cmd.Root().Writer, w); err != nil {
			return err
		}
	}
	return nil
}

func newApp(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(ctx, cfg, userAgent(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return application, nil
}

func userAgent(cmd *cli.Command) string {
	return "momo/" + cmd.Root().Version
}
