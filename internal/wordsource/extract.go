package wordsource

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// DefaultMaxDepth bounds how deeply Extract descends into nested payloads.
const DefaultMaxDepth = 100

// ExtractMode decides when a collection or word field counts as absent.
type ExtractMode int

const (
	// ModeFalsy treats null, "", 0, false, [] and {} as absent, so lookup
	// falls through to the next candidate field.
	ModeFalsy ExtractMode = iota
	// ModeNil treats only a missing key or null as absent. A present but
	// empty value is used as-is.
	ModeNil
)

// ParseExtractMode maps "falsy" and "nil" (alias "none") to an ExtractMode.
func ParseExtractMode(s string) (ExtractMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "falsy":
		return ModeFalsy, nil
	case "nil", "none", "null":
		return ModeNil, nil
	default:
		return 0, fmt.Errorf("unknown extract mode %q (expected: falsy, nil)", s)
	}
}

func (m ExtractMode) String() string {
	switch m {
	case ModeFalsy:
		return "falsy"
	case ModeNil:
		return "nil"
	default:
		return fmt.Sprintf("ExtractMode(%d)", int(m))
	}
}

var (
	collectionKeys = []string{"data", "words"}
	wordKeys       = []string{"word", "content"}
)

// Extractor flattens a decoded JSON payload into an ordered word list.
type Extractor struct {
	Mode ExtractMode
	// MaxDepth caps recursion; branches deeper than this yield nothing.
	// Zero or negative means DefaultMaxDepth.
	MaxDepth int
}

// Extract runs the default extractor (ModeFalsy, DefaultMaxDepth).
func Extract(payload any) []string {
	return Extractor{}.Extract(payload)
}

// Extract never fails: unrecognized shapes contribute no words. The result
// is never nil.
func (e Extractor) Extract(payload any) []string {
	maxDepth := e.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return e.extract(payload, 0, maxDepth, []string{})
}

func (e Extractor) extract(payload any, depth, maxDepth int, words []string) []string {
	if depth > maxDepth {
		return words
	}

	switch v := payload.(type) {
	case map[string]any:
		if collection, ok := e.lookup(v, collectionKeys, false); ok {
			return e.extract(collection, depth+1, maxDepth, words)
		}
		if word, ok := e.lookup(v, wordKeys, true); ok {
			if s, isString := word.(string); isString {
				words = append(words, s)
			}
		}
	case []any:
		for _, item := range v {
			words = e.extract(item, depth+1, maxDepth, words)
		}
	case string:
		words = append(words, v)
	}

	return words
}

// lookup returns the first key in keys whose value is present under the
// extractor's mode. With lastResolves set, a falsy value under the final key
// is still returned in ModeFalsy; only earlier keys fall through on falsy.
func (e Extractor) lookup(obj map[string]any, keys []string, lastResolves bool) (any, bool) {
	for i, key := range keys {
		value, found := obj[key]
		if !found {
			continue
		}
		switch e.Mode {
		case ModeNil:
			if value != nil {
				return value, true
			}
		default:
			if truthy(value) || (lastResolves && i == len(keys)-1) {
				return value, true
			}
		}
	}
	return nil, false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
