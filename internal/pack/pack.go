// Package pack implements the two per-file pipelines: unpacking a record
// script into a translator worksheet, and repacking an edited worksheet into
// its record with tags, width limits, and punctuation rules reapplied.
package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"scriptpack/internal/config"
	"scriptpack/internal/script"
	"scriptpack/internal/subst"
	"scriptpack/internal/tags"
	"scriptpack/internal/textutil"
	"scriptpack/internal/worksheet"
	"scriptpack/internal/wrap"
)

// Report summarizes one processed file.
type Report struct {
	Input   string
	Output  string
	Entries int
}

// Unpack extracts the record script at path into a worksheet, written next
// to the input or into outDir when given. Each element becomes one entry;
// elements still carrying source text also get that text as comments.
func Unpack(cfg *config.Project, path, outDir string) (*Report, error) {
	scr, err := script.Read(path, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	resolver := tags.NewResolver(cfg.Marker(), cfg.Aliases)
	entries := make([]worksheet.Entry, len(scr.Elements))
	for i := range scr.Elements {
		el := &scr.Elements[i]
		if cfg.SourceComment && textutil.ContainsJapanese(el.Text(), false, cfg.Marker()) {
			entries[i].Comments = append([]string(nil), el.Lines...)
		}
		for _, line := range el.Lines {
			if cfg.AliasTags {
				line = resolver.Encode(line)
			}
			entries[i].Lines = append(entries[i].Lines, line)
		}
	}

	out := siblingPath(path, worksheet.Ext, outDir)
	if err := os.WriteFile(out, worksheet.Encode(entries, cfg.Newline()), 0644); err != nil {
		return nil, fmt.Errorf("write worksheet: %w", err)
	}
	log.Debug().Str("record", path).Str("worksheet", out).Int("entries", len(entries)).Msg("Unpacked record")
	return &Report{Input: path, Output: out, Entries: len(entries)}, nil
}

// Repack reads the worksheet at path, transforms each entry, and writes the
// result back into the sibling record script. The worksheet must carry
// exactly one entry per record element or the file is rejected before
// anything is written.
func Repack(cfg *config.Project, path, outDir string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open worksheet: %w", err)
	}
	entries, err := worksheet.Parse(f, cfg.StrictSequence)
	f.Close()
	if err != nil {
		return nil, err
	}

	recPath := strings.TrimSuffix(path, filepath.Ext(path)) + script.Ext
	scr, err := script.Read(recPath, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if len(entries) != len(scr.Elements) {
		return nil, fmt.Errorf("entry count mismatch: worksheet has %d, record has %d", len(entries), len(scr.Elements))
	}

	base := baseName(path)
	resolver := tags.NewResolver(cfg.Marker(), cfg.Aliases)
	engine := subst.New(cfg.Substitutions)
	for i := range entries {
		text := strings.Join(entries[i].Lines, "\n")
		scr.Elements[i].SetText(renderEntry(cfg, resolver, engine, base, i, text))
	}

	data, err := scr.Encode(cfg.Newline(), cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", recPath, err)
	}
	out := siblingPath(recPath, script.Ext, outDir)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return nil, fmt.Errorf("write record: %w", err)
	}
	log.Debug().Str("worksheet", path).Str("record", out).Int("entries", len(entries)).Msg("Repacked record")
	return &Report{Input: path, Output: out, Entries: len(entries)}, nil
}

// renderEntry applies the repack transforms to one entry's joined text in
// override order: preserve short-circuits everything, untranslated text
// passes through untouched, then alias decoding, substitution, and reflow.
func renderEntry(cfg *config.Project, resolver *tags.Resolver, engine *subst.Engine, file string, index int, text string) string {
	ov := cfg.Override(file, index)
	if ov.Preserve {
		return text
	}
	if textutil.ContainsJapanese(text, true, cfg.Marker()) {
		log.Debug().Str("file", file).Int("index", index).Msg("Entry still in source script, kept verbatim")
		return text
	}

	text = resolver.Decode(text)
	if ov.SubstituteEnabled() {
		text = engine.Apply(text)
	}
	if ov.Manual {
		return text
	}

	table := cfg.TagLengths
	if len(ov.TagLengths) > 0 {
		table = make(map[string]int, len(cfg.TagLengths)+len(ov.TagLengths))
		for k, v := range cfg.TagLengths {
			table[k] = v
		}
		for k, v := range ov.TagLengths {
			table[k] = v
		}
	}
	maxLen := cfg.MaxLen
	if ov.MaxLen > 0 {
		maxLen = ov.MaxLen
	}
	return wrap.New(cfg.Marker(), table, maxLen).Wrap(text)
}

// siblingPath swaps path's extension for ext, redirecting into outDir when
// one is given.
func siblingPath(path, ext, outDir string) string {
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(out))
	}
	return out
}

// baseName is the override key of a file: its base name without extension.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
