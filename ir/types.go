// Package ir defines the Intermediate Representation of a C API surface.
// These types are language-agnostic descriptions of C declarations that
// binding generators transform into target language source code.
package ir

import (
	"fmt"
	"regexp"
	"strings"
)

// Span represents the source range a declaration was parsed from.
type Span struct {
	File        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// IsZero returns true if the span is empty.
func (s Span) IsZero() bool {
	return s == Span{}
}

// String returns the span in file:line:col form, pointing at its start.
func (s Span) String() string {
	file := s.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, s.StartLine, s.StartColumn)
}

// Documentation holds the documentation block attached to a declaration,
// enumerator or field.
type Documentation struct {
	// Lines are the comment lines in source order, with the comment markers
	// (/**, */, leading *) stripped. Internal empty lines are preserved.
	Lines []string
}

// IsZero returns true if there is no documentation.
func (d Documentation) IsZero() bool {
	return len(d.Lines) == 0
}

// Text returns the documentation lines joined with newlines.
func (d Documentation) Text() string {
	return strings.Join(d.Lines, "\n")
}

// Summary returns the first non-empty line.
// Use this for inline comments or single-line descriptions.
func (d Documentation) Summary() string {
	for _, line := range d.Lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var paramNameRe = regexp.MustCompile(`[\\@]param(?:\s*\[[a-zA-Z, ]+\])?\s+(\w+)`)

// ParamNames returns the parameter names documented with Doxygen
// \param or @param commands, in order of appearance.
func (d Documentation) ParamNames() []string {
	var names []string
	for _, line := range d.Lines {
		for _, m := range paramNameRe.FindAllStringSubmatch(line, -1) {
			names = append(names, m[1])
		}
	}
	return names
}
