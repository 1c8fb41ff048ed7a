package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/zd20000723-dot/momo/internal/app"
	"github.com/zd20000723-dot/momo/internal/wordsource"
)

// authCommand returns the 'auth' subcommand for managing OAuth credentials.
func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage MoMo OAuth credentials",
		Commands: []*cli.Command{
			authLoginCommand(),
			authLogoutCommand(),
			authStatusCommand(),
		},
	}
}

// authLoginCommand returns the 'auth login' subcommand.
func authLoginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Exchange client credentials for an access token and save it",
		Action: authLoginAction,
	}
}

// authLogoutCommand returns the 'auth logout' subcommand.
func authLogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the saved access token",
		Action: authLogoutAction,
	}
}

func authStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show where the access token is stored and whether one is present",
		Action: authStatusAction,
	}
}

// authLoginAction runs the client-credentials grant and stores the token.
func authLoginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.Storage == app.TokenStorageTypeEnv {
		return fmt.Errorf("cannot login with env storage (read-only). Configure file or keyring storage")
	}

	store, err := cfg.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	if cfg.WordSource.ClientID == "" {
		return fmt.Errorf("client id is required: set --client-id or MOMO_CLIENT_ID")
	}
	if cfg.WordSource.ClientSecret == "" {
		secret, err := readSecureInput(ctx, cmd, "Enter client secret: ")
		if err != nil {
			return err
		}
		if secret = strings.TrimSpace(secret); secret == "" {
			return fmt.Errorf("client secret cannot be empty")
		}
		cfg.WordSource.ClientSecret = secret
	}

	token, err := runClientCredentials(ctx, cfg, userAgent(cmd))
	if err != nil {
		return fmt.Errorf("oauth login failed: %w", err)
	}

	if err := store.Write(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	out := cmd.Root().Writer
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Login Successful ===")
	fmt.Fprintf(out, "Token saved to %s storage\n", cfg.Auth.Storage)
	if !token.Expiry.IsZero() {
		fmt.Fprintf(out, "Token expires at %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, "Run with --auth-mode oauth (or MOMO_AUTH_MODE=oauth) to use it")

	return nil
}

// authLogoutAction clears the stored token.
func authLogoutAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.Storage == app.TokenStorageTypeEnv {
		return fmt.Errorf("cannot logout with env storage (read-only). Configure file or keyring storage")
	}

	store, err := cfg.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	// Clear token via empty string write to maintain storage abstraction
	if err := store.Write(ctx, ""); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	out := cmd.Root().Writer
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Logout Successful ===")
	fmt.Fprintln(out, "Credentials cleared from configured storage")

	return nil
}

func authStatusAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := cfg.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}
	token, err := store.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Auth mode:     %s\n", cfg.WordSource.AuthMode)
	fmt.Fprintf(out, "Token storage: %s\n", cfg.Auth.Storage)
	if token == "" {
		fmt.Fprintln(out, "Access token:  (none)")
	} else {
		fmt.Fprintf(out, "Access token:  %s\n", mask(token))
	}
	return nil
}

// runClientCredentials always exchanges fresh credentials, ignoring any
// configured or stored access token.
func runClientCredentials(ctx context.Context, cfg *app.Config, ua string) (*oauth2.Token, error) {
	wsCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	wsCfg.Variant = wordsource.VariantOAuth
	wsCfg.AccessToken = ""
	wsCfg.UserAgent = ua

	client, err := wordsource.New(wsCfg, wordsource.WithHTTPClient(app.NewHTTPClient(wsCfg.Timeout)))
	if err != nil {
		return nil, err
	}
	return client.Token(ctx)
}

// readSecureInput reads user input with hidden display and context cancellation support.
// Goroutine+select pattern required because term.ReadPassword has no native context support.
func readSecureInput(ctx context.Context, cmd *cli.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("client secret is required: set --client-secret or MOMO_CLIENT_SECRET")
	}

	errOut := cmd.Root().ErrWriter
	fmt.Fprint(errOut, prompt)
	defer fmt.Fprintln(errOut)

	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		inputBytes, err := term.ReadPassword(fd)
		resultCh <- result{value: string(inputBytes), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return res.value, nil
	}
}

// mask keeps the first and last four characters of long tokens.
func mask(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
