// Package capir extracts the public API surface of a C library header into
// a language-neutral intermediate representation (see package ir) that
// binding generators consume.
//
// Example:
//
//	res, err := capir.FromFile("include/vlc/libvlc.h").
//	    WithPrefix("libvlc_").
//	    PublicMacros("LIBVLC_API").
//	    ToDir(ctx, "./gen")
package capir

import (
	"context"
	"os"

	"github.com/dustin/go-humanize"
	"gitlab.com/tozd/go/errors"

	"github.com/broady/capir/emit"
	"github.com/broady/capir/internal/clog"
	"github.com/broady/capir/ir"
	"github.com/broady/capir/parser"
	"github.com/broady/capir/sink"
)

// ErrStrict is returned by strict runs whose document has error diagnostics.
var ErrStrict = errors.Base("declarations were dropped")

// Extractor provides a fluent API for extraction.
// Create with FromFile, FromSource or FromConfig and configure with method chaining.
type Extractor struct {
	src    []byte
	loaded bool
	cfg    Config
}

// FromFile creates an Extractor reading the header at path when run.
func FromFile(path string) *Extractor {
	return &Extractor{cfg: Config{Source: path}}
}

// FromSource creates an Extractor over in-memory header text.
// Name is used in spans and output file names.
func FromSource(name string, src []byte) *Extractor {
	return &Extractor{src: src, loaded: true, cfg: Config{Source: name}}
}

// FromConfig creates an Extractor from a loaded configuration.
// The header is read from cfg.Source.
func FromConfig(cfg *Config) *Extractor {
	return &Extractor{cfg: *cfg}
}

// WithPrefix sets the identifier prefix of the API surface.
func (e *Extractor) WithPrefix(prefix string) *Extractor {
	e.cfg.Prefix = prefix
	return e
}

// Exclude drops the named declarations. Can be called multiple times.
func (e *Extractor) Exclude(names ...string) *Extractor {
	e.cfg.Exclude = append(e.cfg.Exclude, names...)
	return e
}

// IgnoreVisibility keeps functions that lack the public marker.
func (e *Extractor) IgnoreVisibility() *Extractor {
	e.cfg.IgnoreVisibility = true
	return e
}

// PublicMacros adds macro names that mark functions public.
func (e *Extractor) PublicMacros(names ...string) *Extractor {
	e.cfg.PublicMacros = append(e.cfg.PublicMacros, names...)
	return e
}

// DeprecatedMacros adds macro names that mark declarations deprecated.
func (e *Extractor) DeprecatedMacros(names ...string) *Extractor {
	e.cfg.DeprecatedMacros = append(e.cfg.DeprecatedMacros, names...)
	return e
}

// RequireDocs reports undocumented declarations as warnings.
func (e *Extractor) RequireDocs() *Extractor {
	e.cfg.RequireDocs = true
	return e
}

// Workers sets the number of goroutines resolving declarations.
func (e *Extractor) Workers(n int) *Extractor {
	e.cfg.Workers = n
	return e
}

// Format sets the output encoding used by ToDir and ToSink.
func (e *Extractor) Format(f emit.Format) *Extractor {
	e.cfg.Format = string(f)
	return e
}

// Strict makes ToDir, ToSink and Extract fail when declarations were dropped.
func (e *Extractor) Strict() *Extractor {
	e.cfg.Strict = true
	return e
}

// Result is the outcome of an extraction.
type Result struct {
	// Document is the parsed IR. Set even when a strict run fails.
	Document *ir.Document

	// Path is the output file written, relative to the sink. Empty for Extract.
	Path string

	// Size is the number of encoded bytes written.
	Size int
}

// Extract parses the header and returns the document without writing it.
func (e *Extractor) Extract(ctx context.Context) (*Result, error) {
	cfg := applyConfigDefaults(&e.cfg)
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.WithDetails(errors.Join(errs...), "source", cfg.Source)
	}

	src := e.src
	if !e.loaded {
		var err error
		src, err = os.ReadFile(cfg.Source)
		if err != nil {
			return nil, errors.Errorf("read header: %w", err)
		}
	}

	doc, err := parser.Parse(ctx, string(src), cfg.parserOptions())
	if err != nil {
		return nil, err
	}

	log := clog.Ctx(ctx)
	for _, w := range doc.Warnings() {
		log.WarnContext(ctx, w.Message, "name", w.Name, "at", w.Span.String())
	}
	for _, d := range doc.Diagnostics() {
		if d.Severity() == ir.SeverityError {
			log.DebugContext(ctx, "dropped declaration", "kind", d.Kind.String(), "name", d.Name, "at", d.Span.String(), "reason", d.Message)
		}
	}

	res := &Result{Document: doc}
	if cfg.Strict {
		if err := doc.Err(); err != nil {
			return res, errors.WrapWith(err, ErrStrict)
		}
	}
	return res, nil
}

// ToDir extracts and writes the encoded document into dir.
// This is a terminal operation that writes files to disk.
func (e *Extractor) ToDir(ctx context.Context, dir string) (*Result, error) {
	e.cfg.OutDir = dir
	return e.ToSink(ctx, sink.NewFilesystemSink(dir))
}

// ToSink extracts and writes the encoded document to s. The file name is
// derived from the source name and the format.
func (e *Extractor) ToSink(ctx context.Context, s sink.Sink) (*Result, error) {
	res, err := e.Extract(ctx)
	if err != nil {
		return res, err
	}

	cfg := applyConfigDefaults(&e.cfg)
	format, err := emit.ParseFormat(cfg.Format)
	if err != nil {
		return res, err
	}
	data, err := emit.Marshal(res.Document, format)
	if err != nil {
		return res, err
	}

	res.Path = emit.Filename(cfg.Source, format)
	res.Size = len(data)
	if err := s.WriteFile(ctx, res.Path, data); err != nil {
		return res, errors.Errorf("write %s: %w", res.Path, err)
	}
	clog.Ctx(ctx).InfoContext(ctx, "extracted",
		"declarations", res.Document.Len(),
		"diagnostics", len(res.Document.Diagnostics()),
		"output", res.Path,
		"size", humanize.Bytes(uint64(res.Size)))
	return res, nil
}
