package app

import (
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/v2"
)

// yamlParser implements koanf.Parser for YAML config files.
type yamlParser struct{}

var _ koanf.Parser = yamlParser{}

func (yamlParser) Unmarshal(b []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]any) ([]byte, error) {
	return yaml.Marshal(m)
}

// parserFor picks the config parser from the file extension; anything that
// is not .yaml or .yml is read as TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlParser{}
	default:
		return toml.Parser()
	}
}
