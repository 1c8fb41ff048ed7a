package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/zd20000723-dot/momo/internal/app"
)

// flagKeys maps string flags to the config keys they override.
var flagKeys = map[string]string{
	"base-url":       "wordsource.base_url",
	"token":          "wordsource.token",
	"daily-endpoint": "wordsource.today_path",
	"date-endpoint":  "wordsource.date_path",
	"token-endpoint": "wordsource.token_path",
	"auth-mode":      "wordsource.auth_mode",
	"client-id":      "wordsource.client_id",
	"client-secret":  "wordsource.client_secret",
	"access-token":   "wordsource.access_token",
	"extract-mode":   "wordsource.extract_mode",
	"selector":       "wordsource.selector",
	"token-storage":  "auth.storage",
	"translate-url":  "translate.url",
	"direction":      "translate.direction",
}

// overrides collects explicitly set flags so they take precedence over the
// config file and environment. Unset flags never shadow lower layers.
func overrides(cmd *cli.Command) map[string]any {
	out := make(map[string]any)
	for name, key := range flagKeys {
		if cmd.IsSet(name) {
			out[key] = cmd.String(name)
		}
	}
	if cmd.IsSet("timeout") {
		out["wordsource.timeout"] = cmd.Duration("timeout")
	}
	if cmd.IsSet("sentences") {
		out["reading.sentences"] = cmd.Int("sentences")
	}
	if cmd.IsSet("no-translate") {
		out["translate.disabled"] = cmd.Bool("no-translate")
	}
	return out
}

func loadConfig(path string, cmd *cli.Command, environ func() []string) (*app.Config, error) {
	return app.LoadConfig(path, overrides(cmd), environ)
}
