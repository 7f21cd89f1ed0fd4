package ir

// EnumDecl represents an enumeration.
type EnumDecl struct {
	declBase

	// Tag is the enum tag (`enum tag {...}`). It is a cross-reference key
	// only; Name carries the typedef name when one is present.
	Tag string

	// Typedef is set for `typedef enum ... name;` declarations.
	Typedef bool

	// Enumerators contains all members in declaration order.
	Enumerators []Enumerator
}

// Kind returns KindEnum.
func (d *EnumDecl) Kind() DeclKind { return KindEnum }

// NewEnum returns an EnumDecl.
func NewEnum(name string, enumerators []Enumerator, doc Documentation, src Span) *EnumDecl {
	return &EnumDecl{declBase: declBase{Name: name, Documentation: doc, Source: src}, Enumerators: enumerators}
}

// Values returns the resolved values in declaration order.
func (d *EnumDecl) Values() []int64 {
	out := make([]int64, len(d.Enumerators))
	for i, e := range d.Enumerators {
		out[i] = e.Value
	}
	return out
}

// Enumerator represents a single enum member.
type Enumerator struct {
	// Name is the constant name.
	Name string

	// Value is the resolved integer value.
	Value int64

	// Literal is the value as generators should spell it: the initializer
	// text for plain hexadecimal literals (e.g. "0xf"), decimal otherwise.
	Literal string

	// Deprecated is set when the enumerator carries a deprecated marker.
	Deprecated bool

	// Documentation for this member.
	Documentation Documentation
}
