// Package emit encodes an ir.Document for consumption by binding
// generators and for human inspection.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/k0kubun/pp/v3"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/broady/capir/ir"
)

// Format is an output encoding.
type Format string

const (
	// FormatJSON is indented JSON with "kind" discriminators.
	FormatJSON Format = "json"

	// FormatYAML carries the same tree as FormatJSON, in block style.
	FormatYAML Format = "yaml"

	// FormatPP is a Go-syntax debug dump.
	FormatPP Format = "pp"

	// FormatC re-renders the declarations as a C header.
	FormatC Format = "c"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.Base("unknown format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatPP, FormatC}
}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.WithDetails(ErrUnknownFormat, "format", s)
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatC:
		return ".h"
	case FormatPP:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// Filename derives an output file name from a source path:
// "include/vlc/libvlc.h" becomes "libvlc.json" for FormatJSON.
func Filename(source string, f Format) string {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	if base == "." || base == "/" || strings.HasPrefix(base, "<") {
		base = "capir"
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if f == FormatC {
		base += ".ir"
	}
	return base + f.Ext()
}

// Marshal encodes doc in format f.
func Marshal(doc *ir.Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes doc to w in format f.
func Encode(w io.Writer, doc *ir.Document, f Format) error {
	switch f {
	case FormatJSON:
		return encodeJSON(w, doc)
	case FormatYAML:
		return encodeYAML(w, doc)
	case FormatPP:
		return encodePP(w, doc)
	case FormatC:
		return encodeC(w, doc)
	default:
		return errors.WithDetails(ErrUnknownFormat, "format", string(f))
	}
}

func encodeJSON(w io.Writer, doc *ir.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Errorf("encode json: %w", err)
	}
	return nil
}

// encodeYAML goes through the JSON encoding so both formats carry the same
// keys in the same order. JSON is valid YAML; the decoded node tree only
// needs its flow and quoting styles cleared.
func encodeYAML(w io.Writer, doc *ir.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Errorf("encode json: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.Errorf("decode json as yaml: %w", err)
	}
	clearStyle(&root)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return errors.Errorf("encode yaml: %w", err)
	}
	return errors.WithStack(enc.Close())
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// dump is the exported view of a Document printed by FormatPP.
type dump struct {
	Metadata     ir.Metadata
	Declarations []ir.Declaration
	Diagnostics  []ir.Diagnostic
}

func encodePP(w io.Writer, doc *ir.Document) error {
	p := pp.New()
	p.SetColoringEnabled(false)
	_, err := io.WriteString(w, p.Sprint(dump{
		Metadata:     doc.Metadata(),
		Declarations: doc.Declarations(),
		Diagnostics:  doc.Diagnostics(),
	})+"\n")
	return errors.WithStack(err)
}

func encodeC(w io.Writer, doc *ir.Document) error {
	var b strings.Builder
	meta := doc.Metadata()
	fmt.Fprintf(&b, "/* Extracted from %s", meta.Source)
	if meta.Version != "" {
		fmt.Fprintf(&b, " (version %s)", meta.Version)
	}
	b.WriteString(". */\n")
	for _, d := range doc.Declarations() {
		b.WriteByte('\n')
		b.WriteString(ir.RenderC(d))
	}
	_, err := io.WriteString(w, b.String())
	return errors.WithStack(err)
}
