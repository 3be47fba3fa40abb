// Package worksheet implements the translator worksheet format: a flat text
// file of entries, each opened by a zero-padded counter line and holding
// optional comment lines and content lines.
package worksheet

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Ext is the file extension that marks worksheet files.
const Ext = ".txt"

// counterDigits is the fixed width of a counter line.
const counterDigits = 5

// Entry is one translatable unit. Comments hold source reference text and
// are never repacked; Lines hold the live text.
type Entry struct {
	Comments []string
	Lines    []string
}

// Encode serializes entries into worksheet text. Entry position becomes the
// counter value; comments get a "// " prefix; content lines are written
// verbatim. newline selects the line break.
func Encode(entries []Entry, newline string) []byte {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%0*d%s", counterDigits, i, newline)
		for _, c := range e.Comments {
			b.WriteString("// ")
			b.WriteString(c)
			b.WriteString(newline)
		}
		for _, l := range e.Lines {
			b.WriteString(l)
			b.WriteString(newline)
		}
	}
	return []byte(b.String())
}

// Parse reads worksheet text back into entries. A counter line is exactly
// five characters parsing as a base-10 integer; in forgiving mode an
// out-of-sequence counter is logged and the running counter resynchronized,
// in strict mode it aborts the parse. Content lines are trimmed; empty input
// yields an empty set.
func Parse(r io.Reader, strict bool) ([]Entry, error) {
	var (
		entries  []Entry
		comments []string
		lines    []string
		next     int
		seen     bool
	)
	flush := func() {
		entries = append(entries, Entry{Comments: comments, Lines: lines})
		comments, lines = nil, nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		seen = true
		if v, ok := counterValue(line); ok {
			if v > 0 {
				flush()
			}
			if v != next {
				if strict {
					return nil, fmt.Errorf("counter out of sequence: want %0*d, found %0*d", counterDigits, next, counterDigits, v)
				}
				log.Error().Int("want", next).Int("found", v).Msg("Counter out of sequence, resynchronizing")
				next = v
			}
			next++
			continue
		}
		if c, ok := commentText(line); ok {
			comments = append(comments, c)
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan worksheet: %w", err)
	}
	if seen {
		flush()
	}
	return entries, nil
}

// counterValue reports whether line is a counter line and returns its value.
func counterValue(line string) (int, bool) {
	if len(line) != counterDigits {
		return 0, false
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}
	return v, true
}

// commentText strips the comment marker and the whitespace right after it.
func commentText(line string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(line, "//"):
		rest = line[2:]
	case strings.HasPrefix(line, "#"):
		rest = line[1:]
	default:
		return "", false
	}
	return strings.TrimLeft(rest, " \t"), true
}
