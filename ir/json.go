package ir

import "encoding/json"

// JSON serialization support for IR types.
// All declarations and fields include a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for Span.
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		File        string `json:"file,omitempty"`
		StartLine   int    `json:"startLine"`
		StartColumn int    `json:"startColumn"`
		EndLine     int    `json:"endLine"`
		EndColumn   int    `json:"endColumn"`
	}{
		File:        s.File,
		StartLine:   s.StartLine,
		StartColumn: s.StartColumn,
		EndLine:     s.EndLine,
		EndColumn:   s.EndColumn,
	})
}

// MarshalJSON implements json.Marshaler for TypeRef.
func (t TypeRef) MarshalJSON() ([]byte, error) {
	var pointers []bool
	for _, p := range t.Pointers {
		pointers = append(pointers, p.Const)
	}
	return json.Marshal(&struct {
		Kind      string     `json:"kind"`
		Tag       string     `json:"tag,omitempty"`
		Base      string     `json:"base,omitempty"`
		Const     bool       `json:"const,omitempty"`
		Pointers  []bool     `json:"pointers,omitempty"`
		Signature *Signature `json:"signature,omitempty"`
		Dims      []string   `json:"dims,omitempty"`
		C         string     `json:"c"`
	}{
		Kind:      kindName(t.Kind.String()),
		Tag:       t.Tag,
		Base:      t.Base,
		Const:     t.Const,
		Pointers:  pointers,
		Signature: t.Signature,
		Dims:      t.Dims,
		C:         t.Render(),
	})
}

// MarshalJSON implements json.Marshaler for Signature.
func (s Signature) MarshalJSON() ([]byte, error) {
	params := s.Params
	if params == nil {
		params = []Parameter{}
	}
	return json.Marshal(&struct {
		Return   TypeRef     `json:"return"`
		Params   []Parameter `json:"params"`
		Variadic bool        `json:"variadic,omitempty"`
	}{
		Return:   s.Return,
		Params:   params,
		Variadic: s.Variadic,
	})
}

// MarshalJSON implements json.Marshaler for Parameter.
func (p Parameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name string  `json:"name,omitempty"`
		Type TypeRef `json:"type"`
	}{
		Name: p.Name,
		Type: p.Type,
	})
}

// MarshalJSON implements json.Marshaler for FunctionDecl.
func (d *FunctionDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind       string    `json:"kind"`
		Name       string    `json:"name"`
		Signature  Signature `json:"signature"`
		Public     bool      `json:"public"`
		Deprecated bool      `json:"deprecated,omitempty"`
		Doc        []string  `json:"doc,omitempty"`
		Span       Span      `json:"span"`
	}{
		Kind:       "function",
		Name:       d.Name,
		Signature:  d.Signature,
		Public:     d.Public,
		Deprecated: d.Deprecated,
		Doc:        d.Documentation.Lines,
		Span:       d.Source,
	})
}

// MarshalJSON implements json.Marshaler for CallbackDecl.
func (d *CallbackDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind      string    `json:"kind"`
		Name      string    `json:"name"`
		Signature Signature `json:"signature"`
		Doc       []string  `json:"doc,omitempty"`
		Span      Span      `json:"span"`
	}{
		Kind:      "callback",
		Name:      d.Name,
		Signature: d.Signature,
		Doc:       d.Documentation.Lines,
		Span:      d.Source,
	})
}

// MarshalJSON implements json.Marshaler for TypedefDecl.
func (d *TypedefDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind   string   `json:"kind"`
		Name   string   `json:"name"`
		Target TypeRef  `json:"target"`
		Opaque bool     `json:"opaque,omitempty"`
		Doc    []string `json:"doc,omitempty"`
		Span   Span     `json:"span"`
	}{
		Kind:   "typedef",
		Name:   d.Name,
		Target: d.Target,
		Opaque: d.Opaque,
		Doc:    d.Documentation.Lines,
		Span:   d.Source,
	})
}

// MarshalJSON implements json.Marshaler for EnumDecl.
func (d *EnumDecl) MarshalJSON() ([]byte, error) {
	enumerators := d.Enumerators
	if enumerators == nil {
		enumerators = []Enumerator{}
	}
	return json.Marshal(&struct {
		Kind        string       `json:"kind"`
		Name        string       `json:"name"`
		Tag         string       `json:"tag,omitempty"`
		Typedef     bool         `json:"typedef,omitempty"`
		Enumerators []Enumerator `json:"enumerators"`
		Doc         []string     `json:"doc,omitempty"`
		Span        Span         `json:"span"`
	}{
		Kind:        "enum",
		Name:        d.Name,
		Tag:         d.Tag,
		Typedef:     d.Typedef,
		Enumerators: enumerators,
		Doc:         d.Documentation.Lines,
		Span:        d.Source,
	})
}

// MarshalJSON implements json.Marshaler for Enumerator.
func (e Enumerator) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name       string   `json:"name"`
		Value      int64    `json:"value"`
		Literal    string   `json:"literal,omitempty"`
		Deprecated bool     `json:"deprecated,omitempty"`
		Doc        []string `json:"doc,omitempty"`
	}{
		Name:       e.Name,
		Value:      e.Value,
		Literal:    e.Literal,
		Deprecated: e.Deprecated,
		Doc:        e.Documentation.Lines,
	})
}

// MarshalJSON implements json.Marshaler for StructDecl.
func (d *StructDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind      string    `json:"kind"`
		Name      string    `json:"name"`
		Tag       string    `json:"tag,omitempty"`
		Typedef   bool      `json:"typedef,omitempty"`
		Aggregate Aggregate `json:"aggregate"`
		Doc       []string  `json:"doc,omitempty"`
		Span      Span      `json:"span"`
	}{
		Kind:      "struct",
		Name:      d.Name,
		Tag:       d.Tag,
		Typedef:   d.Typedef,
		Aggregate: d.Aggregate,
		Doc:       d.Documentation.Lines,
		Span:      d.Source,
	})
}

// MarshalJSON implements json.Marshaler for Aggregate.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	fields := a.Fields
	if fields == nil {
		fields = []Field{}
	}
	return json.Marshal(&struct {
		Kind   string  `json:"kind"`
		Fields []Field `json:"fields"`
	}{
		Kind:   a.Kind.String(),
		Fields: fields,
	})
}

// MarshalJSON implements json.Marshaler for PrimitiveField.
func (f *PrimitiveField) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind       string   `json:"kind"`
		Name       string   `json:"name"`
		Type       TypeRef  `json:"type"`
		Default    *string  `json:"default,omitempty"`
		BitWidth   int      `json:"bitWidth,omitempty"`
		Deprecated bool     `json:"deprecated,omitempty"`
		Doc        []string `json:"doc,omitempty"`
	}{
		Kind:       "field",
		Name:       f.Name,
		Type:       f.Type,
		Default:    f.Default,
		BitWidth:   f.BitWidth,
		Deprecated: f.Deprecated,
		Doc:        f.Documentation.Lines,
	})
}

// MarshalJSON implements json.Marshaler for NestedAggregate.
func (f *NestedAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind      string    `json:"kind"`
		Name      string    `json:"name,omitempty"`
		Aggregate Aggregate `json:"aggregate"`
		Doc       []string  `json:"doc,omitempty"`
	}{
		Kind:      "nested",
		Name:      f.Name,
		Aggregate: f.Aggregate,
		Doc:       f.Documentation.Lines,
	})
}

// MarshalJSON implements json.Marshaler for Diagnostic.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Severity string `json:"severity"`
		Name     string `json:"name,omitempty"`
		Message  string `json:"message"`
		Span     Span   `json:"span"`
	}{
		Kind:     d.Kind.String(),
		Severity: d.Severity().String(),
		Name:     d.Name,
		Message:  d.Message,
		Span:     d.Span,
	})
}

// MarshalJSON implements json.Marshaler for Document.
func (doc *Document) MarshalJSON() ([]byte, error) {
	decls := doc.decls
	if decls == nil {
		decls = []Declaration{}
	}
	return json.Marshal(&struct {
		Source       string        `json:"source,omitempty"`
		Prefix       string        `json:"prefix,omitempty"`
		Version      string        `json:"version,omitempty"`
		Declarations []Declaration `json:"declarations"`
		Diagnostics  []Diagnostic  `json:"diagnostics,omitempty"`
	}{
		Source:       doc.meta.Source,
		Prefix:       doc.meta.Prefix,
		Version:      doc.meta.Version,
		Declarations: decls,
		Diagnostics:  doc.diags,
	})
}

// kindName lower-cases the first letter of a Kind String() value.
func kindName(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]+('a'-'A')) + s[1:]
}
