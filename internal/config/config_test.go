package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"scriptpack/internal/script"
	"scriptpack/internal/subst"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scriptpack.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProjectDefaults(t *testing.T) {
	p, err := LoadProject(filepath.Join(t.TempDir(), "absent.yml"), false)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Marker() != '@' {
		t.Errorf("Marker = %q, want '@'", p.Marker())
	}
	if p.MaxLen != 30 {
		t.Errorf("MaxLen = %d, want 30", p.MaxLen)
	}
	if p.Encoding != script.UTF8 {
		t.Errorf("Encoding = %q, want utf8", p.Encoding)
	}
	if !p.SourceComment || !p.AliasTags {
		t.Error("source_comment and alias_tags should default on")
	}
	if p.CRLF || p.StrictSequence {
		t.Error("crlf and strict_sequence should default off")
	}
	if p.Newline() != "\n" {
		t.Errorf("Newline = %q", p.Newline())
	}
}

func TestLoadProjectRequired(t *testing.T) {
	if _, err := LoadProject(filepath.Join(t.TempDir(), "absent.yml"), true); err == nil {
		t.Error("explicitly named missing config did not error")
	}
}

func TestLoadProjectFull(t *testing.T) {
	path := writeConfig(t, `
tag_marker: "%"
max_len: 24
encoding: sjis
crlf: true
source_comment: false
alias_tags: false
strict_sequence: true
aliases:
  HERO_NAME: hero
tag_lengths:
  HERO_NAME: 8
substitutions:
  - find: "..."
    replace: "…"
overrides:
  - file: ev001
    index: 3
    preserve: true
  - file: ev002
    index: 0
    manual: true
    substitute: false
    max_len: 16
    tag_lengths:
      HERO_NAME: 4
`)
	p, err := LoadProject(path, true)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Marker() != '%' {
		t.Errorf("Marker = %q", p.Marker())
	}
	if p.MaxLen != 24 || p.Encoding != script.ShiftJIS || !p.CRLF || !p.StrictSequence {
		t.Errorf("scalar fields = %+v", p)
	}
	if p.SourceComment || p.AliasTags {
		t.Error("explicit false values were not honored")
	}
	if p.Newline() != "\r\n" {
		t.Errorf("Newline = %q", p.Newline())
	}
	if p.Aliases["HERO_NAME"] != "hero" || p.TagLengths["HERO_NAME"] != 8 {
		t.Errorf("tables = %v %v", p.Aliases, p.TagLengths)
	}
	wantRules := []subst.Rule{{Find: "...", Replace: "…"}}
	if !reflect.DeepEqual(p.Substitutions, wantRules) {
		t.Errorf("Substitutions = %+v", p.Substitutions)
	}

	ov := p.Override("ev001", 3)
	if !ov.Preserve || ov.Manual {
		t.Errorf("ev001/3 override = %+v", ov)
	}
	ov = p.Override("ev002", 0)
	if !ov.Manual || ov.SubstituteEnabled() || ov.MaxLen != 16 || ov.TagLengths["HERO_NAME"] != 4 {
		t.Errorf("ev002/0 override = %+v", ov)
	}
	// Unconfigured entries get the zero override.
	ov = p.Override("ev999", 7)
	if ov.Preserve || ov.Manual || !ov.SubstituteEnabled() || ov.MaxLen != 0 {
		t.Errorf("zero override = %+v", ov)
	}
}

func TestLoadProjectBadMarker(t *testing.T) {
	for _, marker := range []string{`""`, `"@@"`} {
		path := writeConfig(t, "tag_marker: "+marker+"\n")
		if _, err := LoadProject(path, true); err == nil {
			t.Errorf("marker %s accepted", marker)
		}
	}
}

func TestLoadProjectBadEncoding(t *testing.T) {
	path := writeConfig(t, "encoding: latin1\n")
	if _, err := LoadProject(path, true); err == nil {
		t.Error("unknown encoding accepted")
	}
}

func TestLoadProjectDuplicateAlias(t *testing.T) {
	path := writeConfig(t, `
aliases:
  HERO: h
  HEROINE: h
`)
	if _, err := LoadProject(path, true); err == nil {
		t.Error("duplicate alias target accepted")
	}
}

func TestLoadProjectAliasCanonicalClash(t *testing.T) {
	path := writeConfig(t, `
aliases:
  HERO: VILLAIN
  VILLAIN: v
`)
	if _, err := LoadProject(path, true); err == nil {
		t.Error("alias shadowing a canonical tag accepted")
	}
}

func TestLoadProjectDuplicateOverride(t *testing.T) {
	path := writeConfig(t, `
overrides:
  - file: ev001
    index: 0
    preserve: true
  - file: ev001
    index: 0
    manual: true
`)
	if _, err := LoadProject(path, true); err == nil {
		t.Error("duplicate override accepted")
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("WORKER_COUNT", "")
	env := LoadEnv()
	if env.LogLevel != "info" {
		t.Errorf("LogLevel = %q", env.LogLevel)
	}
	if env.WorkerCount != 8 {
		t.Errorf("WorkerCount = %d", env.WorkerCount)
	}

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WORKER_COUNT", "3")
	env = LoadEnv()
	if env.LogLevel != "debug" || env.WorkerCount != 3 {
		t.Errorf("env = %+v", env)
	}

	t.Setenv("WORKER_COUNT", "not-a-number")
	if env := LoadEnv(); env.WorkerCount != 8 {
		t.Errorf("bad WORKER_COUNT not defaulted: %d", env.WorkerCount)
	}
}
