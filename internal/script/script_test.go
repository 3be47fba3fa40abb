package script

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

const sample = `; event script 12
; dumped by msgtool
[0000] npc=4
いらっしゃい！
なにをお求めですか？
[0001]
またどうぞ。
[0002] flags=0x20
`

func writeSample(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ev012.msg")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadStructure(t *testing.T) {
	s, err := Read(writeSample(t, []byte(sample)), UTF8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	wantHeader := []string{"; event script 12", "; dumped by msgtool"}
	if !reflect.DeepEqual(s.Header, wantHeader) {
		t.Errorf("Header = %q, want %q", s.Header, wantHeader)
	}
	if len(s.Elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(s.Elements))
	}
	if s.Elements[0].Decl != "[0000] npc=4" {
		t.Errorf("Decl = %q", s.Elements[0].Decl)
	}
	if got := s.Elements[0].Text(); got != "いらっしゃい！\nなにをお求めですか？" {
		t.Errorf("Text = %q", got)
	}
	if len(s.Elements[2].Lines) != 0 {
		t.Errorf("empty element has lines %q", s.Elements[2].Lines)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	s, err := Read(writeSample(t, []byte(sample)), UTF8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out, err := s.Encode("\n", UTF8)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != sample {
		t.Errorf("round trip mismatch:\ngot  %q\nwant %q", out, sample)
	}
}

func TestSetText(t *testing.T) {
	e := Element{Decl: "[0000]", Lines: []string{"old"}}
	e.SetText("new one\nnew two")
	if !reflect.DeepEqual(e.Lines, []string{"new one", "new two"}) {
		t.Errorf("Lines = %q", e.Lines)
	}
	e.SetText("")
	if len(e.Lines) != 0 {
		t.Errorf("SetText empty left lines %q", e.Lines)
	}
}

func TestShiftJISRoundTrip(t *testing.T) {
	raw, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	s, err := Read(writeSample(t, raw), ShiftJIS)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := s.Elements[1].Text(); got != "またどうぞ。" {
		t.Errorf("Text = %q", got)
	}
	out, err := s.Encode("\n", ShiftJIS)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !reflect.DeepEqual(out, raw) {
		t.Error("shift-jis bytes changed across the round trip")
	}
}

func TestCRLFInput(t *testing.T) {
	s, err := Read(writeSample(t, []byte("[0000]\r\nhello\r\n")), UTF8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := s.Elements[0].Text(); got != "hello" {
		t.Errorf("Text = %q", got)
	}
	out, err := s.Encode("\r\n", UTF8)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != "[0000]\r\nhello\r\n" {
		t.Errorf("Encode = %q", out)
	}
}

func TestIsElementDecl(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"[0000]", true},
		{"[12345] extras", true},
		{"[]", false},
		{"[00a0]", false},
		{"0000]", false},
		{"[0000", false},
		{"text [0000]", false},
	}
	for _, tt := range tests {
		if got := isElementDecl(tt.line); got != tt.want {
			t.Errorf("isElementDecl(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestValidEncoding(t *testing.T) {
	if !UTF8.Valid() || !ShiftJIS.Valid() {
		t.Error("built-in encodings reported invalid")
	}
	if Encoding("latin1").Valid() {
		t.Error("unknown encoding reported valid")
	}
}
