// Package filewalker discovers and classifies the input files of a batch.
package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"scriptpack/internal/script"
	"scriptpack/internal/worksheet"
)

// Kind routes a discovered file to its pipeline.
type Kind int

const (
	Record    Kind = iota // structured record script, unpacked to a worksheet
	Worksheet             // translator worksheet, repacked into its record
)

// SupportedExtensions maps the file types the process command handles to
// their pipeline kind.
var SupportedExtensions = map[string]Kind{
	script.Ext:    Record,
	worksheet.Ext: Worksheet,
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path string
	Kind Kind
}

// Expand classifies process arguments by extension. Missing paths,
// directories, and unsupported extensions are logged and counted as
// skipped; the batch continues with whatever remains. A record and its
// sibling worksheet in the same batch are both skipped: each one's
// pipeline writes the file the other one reads.
func Expand(args []string) ([]FileEntry, int) {
	var entries []FileEntry
	skipped := 0
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			log.Error().Err(err).Str("path", arg).Msg("Cannot stat input")
			skipped++
			continue
		}
		if info.IsDir() {
			log.Error().Str("path", arg).Msg("Expected a record or worksheet file, got a directory")
			skipped++
			continue
		}
		ext := strings.ToLower(filepath.Ext(arg))
		kind, ok := SupportedExtensions[ext]
		if !ok {
			log.Error().Str("path", arg).Str("ext", ext).Msg("Invalid file extension")
			skipped++
			continue
		}
		entries = append(entries, FileEntry{Path: arg, Kind: kind})
	}

	paired := pairedStems(entries)
	if len(paired) == 0 {
		return entries, skipped
	}
	var kept []FileEntry
	for _, e := range entries {
		if paired[stem(e.Path)] {
			log.Error().Str("path", e.Path).Msg("Sibling record and worksheet in the same batch, skipped")
			skipped++
			continue
		}
		kept = append(kept, e)
	}
	return kept, skipped
}

// stem is the path without its extension, the key a record shares with its
// sibling worksheet.
func stem(path string) string {
	return filepath.Clean(strings.TrimSuffix(path, filepath.Ext(path)))
}

// pairedStems collects the stems present as both a record and a worksheet.
// Unpacking the record rewrites the worksheet while the repack reads it, and
// the repack rewrites the record the unpack reads, so neither half of such a
// pair may run.
func pairedStems(entries []FileEntry) map[string]bool {
	records := make(map[string]bool)
	sheets := make(map[string]bool)
	for _, e := range entries {
		if e.Kind == Record {
			records[stem(e.Path)] = true
		} else {
			sheets[stem(e.Path)] = true
		}
	}
	paired := make(map[string]bool)
	for s := range records {
		if sheets[s] {
			paired[s] = true
		}
	}
	return paired
}

// Worksheets lists the worksheet file names directly under dir, sorted for
// deterministic processing order.
func Worksheets(dir string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var names []string
	for _, d := range dirents {
		if d.IsDir() || strings.ToLower(filepath.Ext(d.Name())) != worksheet.Ext {
			continue
		}
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names, nil
}
