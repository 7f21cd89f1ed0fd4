package ir

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Metadata describes where a Document came from.
type Metadata struct {
	// Source is the input name (file path or "<input>").
	Source string

	// Prefix is the identifier prefix used for inclusion filtering.
	Prefix string

	// Version is the library version scanned from version macros, if any.
	Version string
}

// Document is the complete result of one parse: the resolved declarations
// in source order plus the diagnostics produced along the way.
// A Document is immutable once constructed.
type Document struct {
	meta  Metadata
	decls []Declaration
	diags []Diagnostic
	index map[string]int
}

// NewDocument assembles a Document. Declarations must have unique names;
// later duplicates are ignored by Find.
func NewDocument(meta Metadata, decls []Declaration, diags []Diagnostic) *Document {
	doc := &Document{
		meta:  meta,
		decls: append([]Declaration(nil), decls...),
		diags: append([]Diagnostic(nil), diags...),
		index: make(map[string]int, len(decls)),
	}
	for i, d := range doc.decls {
		if _, ok := doc.index[d.DeclName()]; !ok {
			doc.index[d.DeclName()] = i
		}
	}
	return doc
}

// Metadata returns the document metadata.
func (doc *Document) Metadata() Metadata {
	return doc.meta
}

// Declarations returns the declarations in source order.
func (doc *Document) Declarations() []Declaration {
	return append([]Declaration(nil), doc.decls...)
}

// Diagnostics returns all diagnostics in source order.
func (doc *Document) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), doc.diags...)
}

// Len returns the number of declarations.
func (doc *Document) Len() int {
	return len(doc.decls)
}

// Find looks up a declaration by name. Returns nil if not found.
func (doc *Document) Find(name string) Declaration {
	if i, ok := doc.index[name]; ok {
		return doc.decls[i]
	}
	return nil
}

// Functions returns the function declarations in source order.
func (doc *Document) Functions() []*FunctionDecl {
	return collect[*FunctionDecl](doc.decls)
}

// Enums returns the enum declarations in source order.
func (doc *Document) Enums() []*EnumDecl {
	return collect[*EnumDecl](doc.decls)
}

// Structs returns the struct and union declarations in source order.
func (doc *Document) Structs() []*StructDecl {
	return collect[*StructDecl](doc.decls)
}

// Callbacks returns the callback declarations in source order.
func (doc *Document) Callbacks() []*CallbackDecl {
	return collect[*CallbackDecl](doc.decls)
}

// Typedefs returns the plain typedef declarations in source order.
func (doc *Document) Typedefs() []*TypedefDecl {
	return collect[*TypedefDecl](doc.decls)
}

func collect[T Declaration](decls []Declaration) []T {
	var out []T
	for _, d := range decls {
		if t, ok := d.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Warnings returns the warning-severity diagnostics.
func (doc *Document) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range doc.diags {
		if d.Severity() == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Err combines every error-severity diagnostic into one error.
// Returns nil when the parse dropped nothing.
func (doc *Document) Err() error {
	var result *multierror.Error
	for _, d := range doc.diags {
		if d.Severity() == SeverityError {
			result = multierror.Append(result, d)
		}
	}
	return result.ErrorOrNil()
}

// Validate checks the document for structural issues.
// Returns all validation errors found (not just the first).
func (doc *Document) Validate() []error {
	var errs []*ValidationError

	seen := make(map[string]bool)
	tags := make(map[string]bool)
	for _, d := range doc.decls {
		name := d.DeclName()
		if name == "" {
			errs = append(errs, &ValidationError{
				Code:    "empty_name",
				Message: "declaration without a name at " + d.Span().String(),
			})
			continue
		}
		if seen[name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_declaration",
				Message: "duplicate declaration name: " + name,
			})
		}
		seen[name] = true

		switch decl := d.(type) {
		case *StructDecl:
			if decl.Tag != "" {
				tags[decl.Aggregate.Kind.String()+" "+decl.Tag] = true
			}
		case *EnumDecl:
			if decl.Tag != "" {
				tags["enum "+decl.Tag] = true
			}
		}
	}

	known := func(t TypeRef) bool {
		if t.Tag != "" && tags[t.Tag+" "+t.Base] {
			return true
		}
		return seen[t.Base]
	}

	for _, d := range doc.decls {
		context := d.Kind().String() + " " + d.DeclName()
		switch decl := d.(type) {
		case *FunctionDecl:
			errs = append(errs, doc.validateSignature(decl.Signature, known, context)...)
		case *CallbackDecl:
			errs = append(errs, doc.validateSignature(decl.Signature, known, context)...)
		case *TypedefDecl:
			if !decl.Opaque {
				errs = append(errs, doc.validateTypeRef(decl.Target, known, context)...)
			}
		case *StructDecl:
			errs = append(errs, doc.validateAggregate(decl.Aggregate, known, context)...)
		case *EnumDecl:
			names := make(map[string]bool)
			for _, e := range decl.Enumerators {
				if names[e.Name] {
					errs = append(errs, &ValidationError{
						Code:    "duplicate_enumerator",
						Message: context + " declares " + e.Name + " twice",
					})
				}
				names[e.Name] = true
			}
		}
	}

	var result []error
	for _, e := range errs {
		result = append(result, e)
	}
	return result
}

func (doc *Document) validateAggregate(agg Aggregate, known func(TypeRef) bool, context string) []*ValidationError {
	var errs []*ValidationError
	for _, f := range agg.Fields {
		switch field := f.(type) {
		case *PrimitiveField:
			errs = append(errs, doc.validateTypeRef(field.Type, known, context+"."+field.Name)...)
		case *NestedAggregate:
			errs = append(errs, doc.validateAggregate(field.Aggregate, known, context+"."+field.Name)...)
		}
	}
	return errs
}

func (doc *Document) validateSignature(sig Signature, known func(TypeRef) bool, context string) []*ValidationError {
	errs := doc.validateTypeRef(sig.Return, known, context+" return")
	for _, p := range sig.Params {
		errs = append(errs, doc.validateTypeRef(p.Type, known, context+" parameter "+p.Name)...)
	}
	return errs
}

// validateTypeRef checks that references to prefixed names resolve to a
// declaration of this document. References outside the naming convention
// (FILE, va_list, ...) are not checked.
func (doc *Document) validateTypeRef(t TypeRef, known func(TypeRef) bool, context string) []*ValidationError {
	switch t.Kind {
	case TypeCallback:
		if t.Signature == nil {
			return []*ValidationError{{Code: "missing_signature", Message: context + " is a callback without a signature"}}
		}
		return doc.validateSignature(*t.Signature, known, context)
	case TypeReference:
		if doc.meta.Prefix != "" && strings.HasPrefix(t.Base, doc.meta.Prefix) && !known(t) {
			return []*ValidationError{{
				Code:    "missing_type_reference",
				Message: context + " references unknown type: " + t.BaseName(),
			}}
		}
	}
	return nil
}

// ValidationError represents a document validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
