// Package tags splits dialog text into literal and tag segments and rewrites
// tag names through an alias table.
//
// Control tags are embedded in dialog text between paired marker runes, e.g.
// "@HERO@" with the default marker. Splitting a chunk on the marker yields an
// alternating literal/tag/literal sequence, so every odd index is a tag name.
package tags

import (
	"strings"
	"unicode"
)

// DefaultMarker is the tag delimiter used when none is configured.
const DefaultMarker = '@'

// SplitMarker splits a chunk on the tag marker. With markers in matched
// pairs the result has odd length and odd indices are tag names. Unmatched
// markers are not validated here.
func SplitMarker(chunk string, marker rune) []string {
	return strings.Split(chunk, string(marker))
}

// SplitPreserve splits text into alternating runs of non-space and whitespace
// characters. Concatenating the result restores the input verbatim.
func SplitPreserve(text string) []string {
	if text == "" {
		return nil
	}
	var parts []string
	start := 0
	inSpace := false
	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			parts = append(parts, text[start:i])
			start, inSpace = i, isSpace
		}
	}
	return append(parts, text[start:])
}

// Resolver rewrites tag names through a bidirectional alias table. It is
// built once per run and read-only afterwards.
type Resolver struct {
	marker  rune
	forward map[string]string
	inverse map[string]string
}

// NewResolver builds a Resolver from a canonical-name-to-alias table.
func NewResolver(marker rune, aliases map[string]string) *Resolver {
	inverse := make(map[string]string, len(aliases))
	for name, alias := range aliases {
		inverse[alias] = name
	}
	return &Resolver{marker: marker, forward: aliases, inverse: inverse}
}

// Encode rewrites canonical tag names to their aliases.
func (r *Resolver) Encode(text string) string {
	return r.rewrite(text, r.forward)
}

// Decode rewrites aliases back to canonical tag names.
func (r *Resolver) Decode(text string) string {
	return r.rewrite(text, r.inverse)
}

// rewrite maps every tag segment through table. Literal segments and
// whitespace pass through untouched, so byte layout outside tag names is
// preserved exactly.
func (r *Resolver) rewrite(text string, table map[string]string) string {
	if len(table) == 0 || !strings.ContainsRune(text, r.marker) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, part := range SplitPreserve(text) {
		if !strings.ContainsRune(part, r.marker) {
			b.WriteString(part)
			continue
		}
		segments := SplitMarker(part, r.marker)
		for i := 1; i < len(segments); i += 2 {
			if mapped, ok := table[segments[i]]; ok {
				segments[i] = mapped
			}
		}
		b.WriteString(strings.Join(segments, string(r.marker)))
	}
	return b.String()
}
