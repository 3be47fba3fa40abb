// Package merge combines several worksheet directories into one side-by-side
// set. The first directory in sorted order that holds a file is that file's
// reference: its text becomes comments, and later variants stack underneath
// as content unless they repeat the reference verbatim.
package merge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"scriptpack/internal/filewalker"
	"scriptpack/internal/worksheet"
)

// Merge combines the worksheet files of dirs into outDir and returns the
// number of files written. A failure on one file is logged and the rest of
// the batch continues.
func Merge(dirs []string, outDir, newline string, strict bool) (int, error) {
	sorted := append([]string(nil), dirs...)
	sort.Strings(sorted)

	names, err := collectNames(sorted)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	written := 0
	for _, name := range names {
		entries, err := mergeFile(sorted, name, strict)
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("Merge failed")
			continue
		}
		out := filepath.Join(outDir, name)
		if err := os.WriteFile(out, worksheet.Encode(entries, newline), 0644); err != nil {
			log.Error().Err(err).Str("file", name).Msg("Write merged worksheet failed")
			continue
		}
		log.Info().Str("file", name).Int("entries", len(entries)).Msg("Merged worksheet")
		written++
	}
	return written, nil
}

// collectNames unions the worksheet file names across all source
// directories, sorted.
func collectNames(dirs []string) ([]string, error) {
	set := make(map[string]struct{})
	for _, dir := range dirs {
		names, err := filewalker.Worksheets(dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// mergeFile builds the merged entry set for one file name. The first sorted
// directory containing the file supplies the reference text.
func mergeFile(dirs []string, name string, strict bool) ([]worksheet.Entry, error) {
	var merged []worksheet.Entry
	haveRef := false
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		entries, err := parseFile(path, strict)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !haveRef {
			haveRef = true
			merged = make([]worksheet.Entry, len(entries))
			for i, e := range entries {
				merged[i] = worksheet.Entry{Comments: e.Lines}
			}
			continue
		}
		for i, e := range entries {
			if i >= len(merged) {
				log.Warn().Str("file", path).Int("index", i).Msg("Entry beyond reference count")
				merged = append(merged, worksheet.Entry{})
			}
			if equalLines(merged[i].Comments, e.Lines) {
				continue
			}
			merged[i].Lines = append(merged[i].Lines, e.Lines...)
		}
	}
	return merged, nil
}

func parseFile(path string, strict bool) ([]worksheet.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := worksheet.Parse(f, strict)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
