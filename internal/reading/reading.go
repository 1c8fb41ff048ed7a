// Package reading builds short practice passages around vocabulary words.
package reading

import (
	"strings"
)

// DefaultWidth is the line width passages are wrapped to.
const DefaultWidth = 88

// Templates are the sentence patterns words are placed into. Each contains
// exactly one {word} placeholder.
var Templates = []string{
	"The {word} appeared repeatedly in today's study session.",
	"To remember {word}, the student wove it into a personal story.",
	"Practice shows that using {word} in context improves retention.",
	"During the mock exam, {word} helped unlock the meaning of a passage.",
	"After reviewing {word}, a quick summary was written to reinforce it.",
	"The mentor asked for an example sentence that included {word}.",
	"A short dialogue was crafted so that {word} sounded natural.",
	"Connecting {word} with related concepts created a semantic map.",
	"A highlight in the reading was the precise use of {word}.",
	"Repeating {word} aloud strengthened pronunciation and recall.",
}

type options struct {
	width     int
	templates []string
}

// Option customizes Generate.
type Option func(*options)

// WithWidth wraps the paragraph at width columns. Zero or less disables
// wrapping.
func WithWidth(width int) Option {
	return func(o *options) {
		o.width = width
	}
}

// WithTemplates replaces the built-in templates.
func WithTemplates(templates ...string) Option {
	return func(o *options) {
		if len(templates) > 0 {
			o.templates = templates
		}
	}
}

// Generate returns a paragraph of the requested number of sentences. Words
// and templates are both used round-robin in order, so the same input always
// yields the same passage. Blank words are skipped; with no usable words or
// a non-positive sentence count the result is empty.
func Generate(words []string, sentences int, opts ...Option) string {
	o := options{width: DefaultWidth, templates: Templates}
	for _, opt := range opts {
		opt(&o)
	}

	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			cleaned = append(cleaned, w)
		}
	}
	if len(cleaned) == 0 || sentences <= 0 {
		return ""
	}

	out := make([]string, 0, sentences)
	for i := range sentences {
		word := cleaned[i%len(cleaned)]
		template := o.templates[i%len(o.templates)]
		out = append(out, strings.ReplaceAll(template, "{word}", word))
	}

	return Wrap(strings.Join(out, " "), o.width)
}

// Wrap reflows text into lines of at most width columns, breaking on
// whitespace. A word longer than width is split: its head fills what is left
// of the current line and the rest continues on width-sized lines.
func Wrap(text string, width int) string {
	fields := strings.Fields(text)
	if width <= 0 || len(fields) == 0 {
		return strings.Join(fields, " ")
	}

	var b strings.Builder
	lineLen := 0
	for _, field := range fields {
		word := []rune(field)
		n := len(word)
		switch {
		case lineLen > 0 && lineLen+1+n <= width:
			b.WriteByte(' ')
			b.WriteString(field)
			lineLen += 1 + n
			continue
		case n <= width:
			if lineLen > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(field)
			lineLen = n
			continue
		}

		if lineLen > 0 {
			if spaceLeft := width - lineLen - 1; spaceLeft > 0 {
				b.WriteByte(' ')
				b.WriteString(string(word[:spaceLeft]))
				word = word[spaceLeft:]
			}
			b.WriteByte('\n')
		}
		for len(word) > width {
			b.WriteString(string(word[:width]))
			b.WriteByte('\n')
			word = word[width:]
		}
		b.WriteString(string(word))
		lineLen = len(word)
	}
	return b.String()
}
