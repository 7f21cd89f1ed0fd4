// Package parser extracts the public declarations of a C header into the
// ir package's representation.
//
// The input is header text; preprocessor lines are skipped, not expanded.
// Parsing runs in stages: tokenizing with a side channel for comments,
// attribute normalization, segmentation into top-level units, resolution of
// each unit, and filtering by naming convention and visibility. Malformed
// or unsupported declarations produce diagnostics and are dropped; the rest
// of the header is still parsed.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/broady/capir/internal/clog"
	"github.com/broady/capir/ir"
)

// Options configures a parse.
type Options struct {
	// File names the input in spans and diagnostics. Empty means "<input>".
	File string

	// Prefix every included declaration name must start with, e.g. "libvlc_".
	Prefix string

	// Exclude lists names that are never included.
	Exclude []string

	// IgnoreVisibility includes functions that lack the public marker.
	IgnoreVisibility bool

	// PublicMacros are macro names that mark a function public, e.g. "LIBVLC_API".
	PublicMacros []string

	// DeprecatedMacros are macro names that mark a declaration deprecated.
	DeprecatedMacros []string

	// RequireDocs emits a MissingDocumentation warning for every included
	// declaration without documentation.
	RequireDocs bool

	// VersionMacroPrefix is the prefix of the VERSION_MAJOR/MINOR/REVISION/EXTRA
	// macros. Default: the upper-cased Prefix.
	VersionMacroPrefix string

	// Workers resolves units concurrently when greater than 1.
	Workers int
}

func applyOptionDefaults(opts *Options) *Options {
	result := *opts
	if result.File == "" {
		result.File = "<input>"
	}
	if result.VersionMacroPrefix == "" {
		result.VersionMacroPrefix = strings.ToUpper(result.Prefix)
	}
	if result.Workers == 0 {
		result.Workers = 1
	}
	return &result
}

// Parse parses header text and returns the document of included
// declarations. The error is non-nil only for invalid options; problems in
// the input are reported as document diagnostics.
func Parse(ctx context.Context, src string, opts Options) (*ir.Document, error) {
	if opts.Workers < 0 {
		return nil, errors.Errorf("workers must not be negative: %d", opts.Workers)
	}
	o := applyOptionDefaults(&opts)
	ctx = clog.WithAttrs(ctx, "file", o.File)
	log := clog.Ctx(ctx)
	log.DebugContext(ctx, "parsing header", "size", humanize.Bytes(uint64(len(src))))

	var diags []ir.Diagnostic

	raw, cmts, lexErr := Lex(src)
	if lexErr != nil {
		var le *LexError
		pos := raw[len(raw)-1].Pos
		if errors.As(lexErr, &le) {
			pos = le.Pos
		}
		diags = append(diags, ir.Diagnostic{
			Kind:    ir.SyntaxError,
			Span:    ir.Span{File: o.File, StartLine: pos.Line, StartColumn: pos.Col, EndLine: pos.Line, EndColumn: pos.Col},
			Message: lexErr.Error(),
		})
	}

	toks := normalize(raw, Markers{Public: o.PublicMacros, Deprecated: o.DeprecatedMacros})
	r := &resolver{file: o.File, toks: toks, docs: newDocIndex(toks, cmts)}

	units, segErrs := segment(toks)
	for _, se := range segErrs {
		diags = append(diags, ir.Diagnostic{
			Kind:    ir.SyntaxError,
			Span:    r.span(se.start, se.at+1),
			Message: se.msg,
		})
	}

	results := make([]resolved, len(units))
	if o.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(o.Workers)
		for i, u := range units {
			g.Go(func() error {
				results[i] = r.resolve(u)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, u := range units {
			results[i] = r.resolve(u)
		}
	}

	mergeForwardTypedefs(ctx, results)

	a := &assembler{
		filter: NewFilter(o.Prefix, o.Exclude, o.IgnoreVisibility),
		opts:   o,
		seen:   make(map[string]bool),
	}
	for i, u := range units {
		a.add(ctx, r, u, results[i])
	}
	diags = append(diags, a.diags...)
	sortDiagnostics(diags)

	meta := ir.Metadata{Source: o.File, Prefix: o.Prefix}
	if v, ok := scanVersion(cmts, o.VersionMacroPrefix); ok {
		meta.Version = v
	}

	log.DebugContext(ctx, "parsed header",
		"declarations", len(a.decls),
		"units", len(units),
		"diagnostics", len(diags))
	return ir.NewDocument(meta, a.decls, diags), nil
}

// assembler applies filtering, naming and uniqueness rules to resolved
// units in source order.
type assembler struct {
	filter Filter
	opts   *Options
	seen   map[string]bool
	decls  []ir.Declaration
	diags  []ir.Diagnostic
}

func (a *assembler) add(ctx context.Context, r *resolver, u unit, res resolved) {
	log := clog.Ctx(ctx)

	if res.err != nil {
		// Failures in declarations outside the naming convention are not
		// worth reporting.
		if res.name != "" && !a.filter.Named(res.name) {
			log.DebugContext(ctx, "skipping malformed declaration outside prefix", "name", res.name, "error", res.err.msg)
			return
		}
		a.diags = append(a.diags, ir.Diagnostic{
			Kind:    res.err.kind,
			Span:    r.errorSpan(u, res.err),
			Name:    res.name,
			Message: res.err.msg,
		})
		return
	}
	if res.decl == nil {
		if u.class != classOther {
			log.DebugContext(ctx, "skipping unit", "class", u.class.String(), "at", r.toks[u.start].Pos.String())
		}
		return
	}

	d := res.decl
	if !a.filter.Allow(d) {
		log.DebugContext(ctx, "excluding declaration", "name", d.DeclName(), "kind", d.Kind().String())
		return
	}
	if a.seen[d.DeclName()] {
		a.diags = append(a.diags, ir.Diagnostic{
			Kind:    ir.DuplicateDeclaration,
			Span:    d.Span(),
			Name:    d.DeclName(),
			Message: "already declared",
		})
		return
	}
	a.seen[d.DeclName()] = true

	if fn, ok := d.(*ir.FunctionDecl); ok {
		nameParams(fn)
	}
	if a.opts.RequireDocs && d.Doc().IsZero() {
		a.diags = append(a.diags, ir.Diagnostic{
			Kind:    ir.MissingDocumentation,
			Span:    d.Span(),
			Name:    d.DeclName(),
			Message: fmt.Sprintf("%s has no documentation", d.Kind()),
		})
	}
	a.decls = append(a.decls, d)
}

// mergeForwardTypedefs pairs `typedef struct x y;` with a definition of
// struct x elsewhere in the unit. The typedef is no longer opaque. When both
// carry the same name, the definition takes over the typedef and the
// forward declaration is dropped.
func mergeForwardTypedefs(ctx context.Context, results []resolved) {
	bodies := make(map[string]*ir.StructDecl)
	for _, res := range results {
		if s, ok := res.decl.(*ir.StructDecl); ok && s.Tag != "" {
			key := s.Aggregate.Kind.String() + " " + s.Tag
			if bodies[key] == nil {
				bodies[key] = s
			}
		}
	}
	if len(bodies) == 0 {
		return
	}

	for i := range results {
		td, ok := results[i].decl.(*ir.TypedefDecl)
		if !ok || !td.Opaque {
			continue
		}
		s := bodies[td.Target.Tag+" "+td.Target.Base]
		if s == nil {
			continue
		}
		td.Opaque = false
		if s.Name != td.Name {
			continue
		}
		clog.Ctx(ctx).DebugContext(ctx, "merging forward typedef into definition", "name", td.Name)
		s.Typedef = true
		if s.Documentation.IsZero() {
			s.Documentation = td.Documentation
		}
		results[i].decl = nil
	}
}

// nameParams fills unnamed parameters from the \param lines of the
// documentation, falling back to paramN.
func nameParams(fn *ir.FunctionDecl) {
	var names []string
	for i := range fn.Signature.Params {
		p := &fn.Signature.Params[i]
		if p.Name != "" {
			continue
		}
		if names == nil {
			names = fn.Documentation.ParamNames()
		}
		if i < len(names) {
			p.Name = names[i]
		} else {
			p.Name = fmt.Sprintf("param%d", i)
		}
	}
}

// errorSpan covers the unit, starting at the offending token when it lies
// inside the unit.
func (r *resolver) errorSpan(u unit, err *parseError) ir.Span {
	s := r.span(u.start, u.end)
	if err.tok.Pos != (Pos{}) {
		s.StartLine = err.tok.Pos.Line
		s.StartColumn = err.tok.Pos.Col
	}
	return s
}

func sortDiagnostics(diags []ir.Diagnostic) {
	// Insertion sort keeps equal positions in emission order.
	for i := 1; i < len(diags); i++ {
		for j := i; j > 0 && spanBefore(diags[j].Span, diags[j-1].Span); j-- {
			diags[j], diags[j-1] = diags[j-1], diags[j]
		}
	}
}

func spanBefore(a, b ir.Span) bool {
	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}
	return a.StartColumn < b.StartColumn
}

// ParseType parses a standalone type expression such as
// `const char* const* const`, with an optional declarator name.
func ParseType(expr string) (ir.TypeRef, error) {
	toks, _, err := Lex(expr)
	if err != nil {
		return ir.TypeRef{}, errors.WithStack(err)
	}
	toks = normalize(toks, Markers{})
	c := newCursor(toks[:len(toks)-1])
	base, err := c.parseSpecifiers()
	if err != nil {
		return ir.TypeRef{}, errors.WithStack(err)
	}
	_, t, err := c.parseDeclarator(base)
	if err != nil {
		return ir.TypeRef{}, errors.WithStack(err)
	}
	if !c.done() {
		return ir.TypeRef{}, errors.Errorf("unexpected %q in type expression", c.peek().Val)
	}
	return t, nil
}
