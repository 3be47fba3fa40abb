// Package script reads and writes MSG dialog scripts, the structured record
// files the worksheets round-trip against. A script is a sequence of header
// lines followed by elements, each opened by a "[NNNN]" declaration line and
// holding the element's text lines until the next declaration.
package script

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
)

// Ext is the file extension that marks MSG script files.
const Ext = ".msg"

// Encoding selects the on-disk byte encoding of MSG files.
type Encoding string

const (
	UTF8     Encoding = "utf8"
	ShiftJIS Encoding = "sjis"
)

// Valid reports whether e names a supported encoding.
func (e Encoding) Valid() bool {
	return e == UTF8 || e == ShiftJIS
}

func (e Encoding) decode(raw []byte) ([]byte, error) {
	if e != ShiftJIS {
		return raw, nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode shift-jis: %w", err)
	}
	return out, nil
}

func (e Encoding) encode(data []byte) ([]byte, error) {
	if e != ShiftJIS {
		return data, nil
	}
	out, err := japanese.ShiftJIS.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("encode shift-jis: %w", err)
	}
	return out, nil
}

// Element is one dialog record: its declaration line, kept verbatim, and its
// text lines.
type Element struct {
	Decl  string
	Lines []string
}

// Text joins the element's lines into one logical string.
func (e *Element) Text() string {
	return strings.Join(e.Lines, "\n")
}

// SetText replaces the element's lines with text split on line breaks.
func (e *Element) SetText(text string) {
	if text == "" {
		e.Lines = nil
		return
	}
	e.Lines = strings.Split(text, "\n")
}

// Script is a parsed MSG file. Header lines precede the first element
// declaration and are written back verbatim.
type Script struct {
	Header   []string
	Elements []Element
}

// Read loads and parses the MSG file at path.
func Read(path string, enc Encoding) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	data, err := enc.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", path, err)
	}
	return parse(string(data)), nil
}

func parse(text string) *Script {
	s := &Script{}
	var cur *Element
	for _, line := range splitLines(text) {
		switch {
		case isElementDecl(line):
			s.Elements = append(s.Elements, Element{Decl: line})
			cur = &s.Elements[len(s.Elements)-1]
		case cur == nil:
			s.Header = append(s.Header, line)
		default:
			cur.Lines = append(cur.Lines, line)
		}
	}
	return s
}

// Encode renders the script back to file bytes. newline selects the line
// break; enc the byte encoding.
func (s *Script) Encode(newline string, enc Encoding) ([]byte, error) {
	var b strings.Builder
	for _, line := range s.Header {
		b.WriteString(line)
		b.WriteString(newline)
	}
	for _, e := range s.Elements {
		b.WriteString(e.Decl)
		b.WriteString(newline)
		for _, l := range e.Lines {
			b.WriteString(l)
			b.WriteString(newline)
		}
	}
	return enc.encode([]byte(b.String()))
}

// splitLines normalizes line endings and drops the final empty split that a
// trailing newline produces.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// isElementDecl reports whether line opens an element: a '[' immediately
// followed by decimal digits and a ']', with anything after the bracket
// kept as part of the declaration.
func isElementDecl(line string) bool {
	if len(line) < 3 || line[0] != '[' {
		return false
	}
	end := strings.IndexByte(line, ']')
	if end < 2 {
		return false
	}
	for _, r := range line[1:end] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
