// Package wrap reflows dialog text into display-width-budgeted lines. Tags
// are atomic: a chunk is measured with its tag names costed from the length
// table, never split mid-tag.
package wrap

import (
	"strings"

	"github.com/rs/zerolog/log"

	"scriptpack/internal/tags"
	"scriptpack/internal/textutil"
)

// DefaultMaxLen is the line budget used when the config leaves it unset.
const DefaultMaxLen = 30

// Wrapper packs whitespace-delimited chunks into lines no wider than MaxLen.
type Wrapper struct {
	marker rune
	table  map[string]int
	maxLen int
}

// New builds a Wrapper. table maps tag names to their rendered width; maxLen
// of zero or below selects DefaultMaxLen.
func New(marker rune, table map[string]int, maxLen int) *Wrapper {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Wrapper{marker: marker, table: table, maxLen: maxLen}
}

// Wrap splits text on whitespace and greedily packs the chunks, counting one
// separator cell between chunks on a line. A chunk is never split: one wider
// than the whole budget is logged and placed on its own line.
func (w *Wrapper) Wrap(text string) string {
	var lines []string
	var line []string
	lineWidth := 0
	for _, chunk := range strings.Fields(text) {
		width := w.chunkWidth(chunk)
		if width > w.maxLen {
			log.Warn().
				Str("chunk", textutil.Truncate(chunk, 20)).
				Int("width", width).
				Int("max", w.maxLen).
				Msg("Chunk wider than the line budget")
		}
		if lineWidth+len(line)+width > w.maxLen && (len(line) > 0 || len(lines) > 0) {
			lines = append(lines, strings.Join(line, " "))
			line = []string{chunk}
			lineWidth = width
			continue
		}
		line = append(line, chunk)
		lineWidth += width
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return strings.Join(lines, "\n")
}

// chunkWidth measures one chunk: literal runs through the display metric,
// tag names through the length table. A tag missing from the table is logged
// and costs nothing.
func (w *Wrapper) chunkWidth(chunk string) int {
	if !strings.ContainsRune(chunk, w.marker) {
		return textutil.Width(chunk)
	}
	width := 0
	for i, seg := range tags.SplitMarker(chunk, w.marker) {
		if i%2 == 0 {
			width += textutil.Width(seg)
			continue
		}
		cost, ok := w.table[seg]
		if !ok {
			log.Warn().Str("tag", seg).Msg("No display length configured for tag")
			continue
		}
		width += cost
	}
	return width
}
