// Package config loads the two configuration layers: process settings from
// the environment and the per-project YAML file with the tag tables,
// substitution rules, and per-entry overrides. Both are read once at startup
// and read-only afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"scriptpack/internal/script"
	"scriptpack/internal/subst"
	"scriptpack/internal/wrap"
)

// DefaultFile is the project configuration file looked up when --config is
// not given.
const DefaultFile = "scriptpack.yml"

// Env holds process settings read from the environment.
type Env struct {
	LogLevel    string
	WorkerCount int
}

// LoadEnv reads .env if present, then the environment.
func LoadEnv() *Env {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Env{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		WorkerCount: getEnvInt("WORKER_COUNT", 8),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Override carries the per-entry directives for one worksheet entry,
// addressed by file base name and entry index.
type Override struct {
	File       string         `yaml:"file"`
	Index      int            `yaml:"index"`
	Preserve   bool           `yaml:"preserve,omitempty"`
	Manual     bool           `yaml:"manual,omitempty"`
	Substitute *bool          `yaml:"substitute,omitempty"`
	MaxLen     int            `yaml:"max_len,omitempty"`
	TagLengths map[string]int `yaml:"tag_lengths,omitempty"`
}

// SubstituteEnabled reports whether the substitution step runs for this
// entry. The step defaults to enabled when the field is omitted.
func (o Override) SubstituteEnabled() bool {
	return o.Substitute == nil || *o.Substitute
}

// OverrideKey addresses one override.
type OverrideKey struct {
	File  string
	Index int
}

// Project is the YAML project configuration.
type Project struct {
	TagMarker      string            `yaml:"tag_marker"`
	MaxLen         int               `yaml:"max_len"`
	Encoding       script.Encoding   `yaml:"encoding"`
	CRLF           bool              `yaml:"crlf"`
	SourceComment  bool              `yaml:"source_comment"`
	AliasTags      bool              `yaml:"alias_tags"`
	StrictSequence bool              `yaml:"strict_sequence"`
	Aliases        map[string]string `yaml:"aliases,omitempty"`
	TagLengths     map[string]int    `yaml:"tag_lengths,omitempty"`
	Substitutions  []subst.Rule      `yaml:"substitutions,omitempty"`
	Overrides      []Override        `yaml:"overrides,omitempty"`

	marker    rune
	overrides map[OverrideKey]Override
}

// DefaultProject returns the configuration used when no project file exists.
func DefaultProject() *Project {
	return &Project{
		TagMarker:     "@",
		MaxLen:        wrap.DefaultMaxLen,
		Encoding:      script.UTF8,
		SourceComment: true,
		AliasTags:     true,
	}
}

// LoadProject reads and validates the project file at path. Fields absent
// from the file keep their defaults. With required unset a missing file is
// logged and the defaults returned.
func LoadProject(path string, required bool) (*Project, error) {
	p := DefaultProject()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			log.Warn().Str("path", path).Msg("No project config found, using defaults")
			return p, p.finish()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := p.finish(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return p, nil
}

// finish validates the loaded values and builds the derived lookup tables.
func (p *Project) finish() error {
	if utf8.RuneCountInString(p.TagMarker) != 1 {
		return fmt.Errorf("tag_marker must be a single character, got %q", p.TagMarker)
	}
	p.marker, _ = utf8.DecodeRuneInString(p.TagMarker)

	if p.MaxLen <= 0 {
		p.MaxLen = wrap.DefaultMaxLen
	}
	if !p.Encoding.Valid() {
		return fmt.Errorf("unknown encoding %q (want %q or %q)", p.Encoding, script.UTF8, script.ShiftJIS)
	}

	assigned := make(map[string]string, len(p.Aliases))
	for name, alias := range p.Aliases {
		if other, dup := assigned[alias]; dup {
			return fmt.Errorf("alias %q assigned to both %q and %q", alias, other, name)
		}
		assigned[alias] = name
		if _, clash := p.Aliases[alias]; clash && alias != name {
			return fmt.Errorf("alias %q collides with the canonical tag of the same name", alias)
		}
	}

	p.overrides = make(map[OverrideKey]Override, len(p.Overrides))
	for _, o := range p.Overrides {
		key := OverrideKey{File: o.File, Index: o.Index}
		if _, dup := p.overrides[key]; dup {
			return fmt.Errorf("duplicate override for %s entry %d", o.File, o.Index)
		}
		p.overrides[key] = o
	}
	return nil
}

// Marker returns the tag delimiter rune.
func (p *Project) Marker() rune {
	return p.marker
}

// Override returns the directives for one worksheet entry; the zero value
// applies when none are configured.
func (p *Project) Override(file string, index int) Override {
	return p.overrides[OverrideKey{File: file, Index: index}]
}

// Newline returns the output line break selected by the crlf flag.
func (p *Project) Newline() string {
	if p.CRLF {
		return "\r\n"
	}
	return "\n"
}
