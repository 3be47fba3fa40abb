// Package subst applies the literal substitution rules and the comma-spacing
// normalization that run between alias decoding and reflow.
package subst

import (
	"strings"
	"unicode"
)

// Rule is a literal find/replace pair. Rules run in declaration order, so a
// later rule sees the output of an earlier one.
type Rule struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// Engine applies a fixed rule list followed by comma normalization. It is
// built once per run and safe for concurrent use.
type Engine struct {
	rules []Rule
}

// New builds an Engine from an ordered rule list.
func New(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Apply runs every rule in order, then normalizes comma spacing.
func (e *Engine) Apply(text string) string {
	for _, r := range e.rules {
		if r.Find == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Find, r.Replace)
	}
	return restoreNumericCommas(spaceListCommas(text))
}

// spaceListCommas rewrites each comma and the whitespace around it to a bare
// ", ". A comma directly followed by a double quote is left alone so closing
// quotes stay attached.
func spaceListCommas(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != ',' {
			out = append(out, r)
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '"' {
			out = append(out, r)
			continue
		}
		for len(out) > 0 && unicode.IsSpace(out[len(out)-1]) {
			out = out[:len(out)-1]
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		out = append(out, ',', ' ')
	}
	return string(out)
}

// restoreNumericCommas rejoins digit groups the list rule has just spaced
// apart: a comma between two digits drops the whitespace after it, turning
// "1, 000" back into "1,000".
func restoreNumericCommas(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != ',' || len(out) == 0 || !unicode.IsDigit(out[len(out)-1]) {
			out = append(out, r)
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && unicode.IsDigit(runes[j]) {
			out = append(out, ',')
			i = j - 1
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
