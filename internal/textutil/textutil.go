package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"scriptpack/internal/tags"
)

// wideGlyphs take two cells in the game's dialog font instead of one.
const wideGlyphs = "！？▼"

// extraSymbols appear in both translated and untranslated text, so they only
// count as source-script characters when the caller opts in.
const extraSymbols = "▼※"

// Width returns the display width of a literal text run: one cell per rune
// plus one extra cell for each wide glyph.
func Width(s string) int {
	w := utf8.RuneCountInString(s)
	for _, r := range s {
		if strings.ContainsRune(wideGlyphs, r) {
			w++
		}
	}
	return w
}

// ContainsJapanese checks if any literal span of s contains Japanese text.
// The string is split on whitespace and then on the tag marker; tag name
// segments are never scanned, so a tag spelled with kanji does not count.
// With includeSymbols set, prompt arrows and reference marks count too.
func ContainsJapanese(s string, includeSymbols bool, marker rune) bool {
	for _, chunk := range strings.Fields(s) {
		segments := tags.SplitMarker(chunk, marker)
		for i := 0; i < len(segments); i += 2 {
			if hasJapanese(segments[i], includeSymbols) {
				return true
			}
		}
	}
	return false
}

func hasJapanese(s string, includeSymbols bool) bool {
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r), unicode.Is(unicode.Han, r):
			return true
		case r >= '｡' && r <= 'ﾟ': // halfwidth katakana block
			return true
		case r == '。' || r == '、':
			return true
		case includeSymbols && strings.ContainsRune(extraSymbols, r):
			return true
		}
	}
	return false
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
