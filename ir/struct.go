package ir

// AggregateKind distinguishes structs from unions.
type AggregateKind int

const (
	AggregateStruct AggregateKind = iota
	AggregateUnion
)

// String returns the C keyword for the aggregate kind.
func (k AggregateKind) String() string {
	switch k {
	case AggregateStruct:
		return "struct"
	case AggregateUnion:
		return "union"
	default:
		return "unknown"
	}
}

// StructDecl represents a top-level struct or union.
type StructDecl struct {
	declBase

	// Tag is the struct tag. It is a cross-reference key for recursive
	// self-reference only; Name carries the typedef name when present.
	Tag string

	// Typedef is set for `typedef struct ... name;` declarations.
	Typedef bool

	// Aggregate is the resolved body.
	Aggregate Aggregate
}

// Kind returns KindStruct.
func (d *StructDecl) Kind() DeclKind { return KindStruct }

// NewStruct returns a StructDecl.
func NewStruct(name string, agg Aggregate, doc Documentation, src Span) *StructDecl {
	return &StructDecl{declBase: declBase{Name: name, Documentation: doc, Source: src}, Aggregate: agg}
}

// Aggregate is a struct or union body.
type Aggregate struct {
	Kind AggregateKind

	// Fields in source order. Members of anonymous nested aggregates are
	// spliced in where the anonymous aggregate appeared.
	Fields []Field
}

// FieldKind identifies the category of a field.
type FieldKind int

const (
	FieldPrimitive FieldKind = iota
	FieldNested
)

// Field is a member of an Aggregate: a *PrimitiveField or a *NestedAggregate.
type Field interface {
	// FieldKind returns the field kind for type switching.
	FieldKind() FieldKind

	// FieldName returns the member name. Empty for anonymous nested aggregates.
	FieldName() string

	sealedField()
}

// PrimitiveField is a typed member, `type name [= default];`.
type PrimitiveField struct {
	// Name is the member name.
	Name string

	// Type is the member type. Raw function-pointer members have a
	// TypeCallback type.
	Type TypeRef

	// Default is the initializer text when one is given, e.g. "'b'" or "1.1".
	Default *string

	// BitWidth is the bit-field width, 0 when the member is not a bit-field.
	BitWidth int

	// Deprecated is set when the member carries a deprecated marker.
	Deprecated bool

	// Documentation for this member.
	Documentation Documentation
}

// FieldKind returns FieldPrimitive.
func (f *PrimitiveField) FieldKind() FieldKind { return FieldPrimitive }

// FieldName returns the member name.
func (f *PrimitiveField) FieldName() string { return f.Name }

func (*PrimitiveField) sealedField() {}

// NestedAggregate is a named struct or union member with an inline body.
type NestedAggregate struct {
	// Name is the member name (`} u;`).
	Name string

	// Aggregate is the nested body.
	Aggregate Aggregate

	// Documentation for this member.
	Documentation Documentation
}

// FieldKind returns FieldNested.
func (f *NestedAggregate) FieldKind() FieldKind { return FieldNested }

// FieldName returns the member name.
func (f *NestedAggregate) FieldName() string { return f.Name }

func (*NestedAggregate) sealedField() {}

// FieldNames returns the names of the direct fields in order.
func (a Aggregate) FieldNames() []string {
	names := make([]string, len(a.Fields))
	for i, f := range a.Fields {
		names[i] = f.FieldName()
	}
	return names
}

// Field returns the direct field with the given name, or nil.
func (a Aggregate) Field(name string) Field {
	for _, f := range a.Fields {
		if f.FieldName() == name {
			return f
		}
	}
	return nil
}
