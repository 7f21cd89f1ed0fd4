package ir

import "strings"

// TypeKind identifies the category of a type reference.
type TypeKind int

const (
	TypePrimitive TypeKind = iota // Built-in C type (int, unsigned char, void, size_t, ...)
	TypeReference                 // Reference to another declaration or tagged type
	TypeCallback                  // Raw function-pointer type
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case TypePrimitive:
		return "Primitive"
	case TypeReference:
		return "Reference"
	case TypeCallback:
		return "Callback"
	default:
		return "Unknown"
	}
}

// PointerLevel is one `*` of a pointer chain.
type PointerLevel struct {
	// Const is set when the pointer itself is const-qualified (`* const`).
	Const bool
}

// TypeRef describes a C type expression.
//
// Qualifier positions are preserved exactly: `const char* const*` and
// `char* const* const` produce different TypeRefs, and Render reproduces
// either spelling.
type TypeRef struct {
	Kind TypeKind

	// Tag is "struct", "union" or "enum" for tagged references, empty otherwise.
	Tag string

	// Base is the primitive spelling ("unsigned int") or the referenced name.
	// Empty for callbacks.
	Base string

	// Const qualifies the innermost pointee (or the value itself when
	// there are no pointer levels).
	Const bool

	// Pointers holds one entry per `*`, innermost first.
	Pointers []PointerLevel

	// Signature is the function shape of a TypeCallback.
	Signature *Signature

	// Dims are array suffixes in source order, e.g. ["32"] for `[32]`.
	Dims []string
}

// Primitive returns a TypeRef for a built-in type.
func Primitive(name string) TypeRef {
	return TypeRef{Kind: TypePrimitive, Base: name}
}

// Ref returns a TypeRef referencing a named type. Tag may be empty.
func Ref(tag, name string) TypeRef {
	return TypeRef{Kind: TypeReference, Tag: tag, Base: name}
}

// Callback returns a TypeRef for a pointer to a function of the given shape.
func Callback(sig Signature) TypeRef {
	return TypeRef{Kind: TypeCallback, Signature: &sig, Pointers: []PointerLevel{{}}}
}

// ConstBase returns a copy of t with the innermost pointee const-qualified.
func (t TypeRef) ConstBase() TypeRef {
	t.Const = true
	return t
}

// Pointer returns a copy of t with one more pointer level appended.
func (t TypeRef) Pointer(constLevel bool) TypeRef {
	levels := make([]PointerLevel, len(t.Pointers), len(t.Pointers)+1)
	copy(levels, t.Pointers)
	t.Pointers = append(levels, PointerLevel{Const: constLevel})
	return t
}

// Depth returns the number of pointer levels.
func (t TypeRef) Depth() int {
	return len(t.Pointers)
}

// IsVoid reports whether t is the plain `void` type.
func (t TypeRef) IsVoid() bool {
	return t.Kind == TypePrimitive && t.Base == "void" && len(t.Pointers) == 0 && len(t.Dims) == 0
}

// Consts returns the qualifier chain: the pointee qualifier followed by one
// entry per pointer level, innermost first.
func (t TypeRef) Consts() []bool {
	out := make([]bool, 0, len(t.Pointers)+1)
	out = append(out, t.Const)
	for _, p := range t.Pointers {
		out = append(out, p.Const)
	}
	return out
}

// BaseName returns the base spelling including the tag keyword.
func (t TypeRef) BaseName() string {
	if t.Tag != "" {
		return t.Tag + " " + t.Base
	}
	return t.Base
}

// Render returns the abstract declarator text of t, e.g.
// `const char* const* const` or `void* (*)(int, float)`.
func (t TypeRef) Render() string {
	return t.RenderDecl("")
}

// RenderDecl returns the declaration text of t with the given declarator
// name, e.g. `char* const* c2` or `void (*cb)(void)`.
func (t TypeRef) RenderDecl(name string) string {
	if t.Kind == TypeCallback && t.Signature != nil {
		return t.renderCallback(name)
	}

	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	b.WriteString(t.BaseName())
	for _, p := range t.Pointers {
		b.WriteByte('*')
		if p.Const {
			b.WriteString(" const")
		}
	}
	if name != "" {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	for _, d := range t.Dims {
		b.WriteString("[" + d + "]")
	}
	return b.String()
}

func (t TypeRef) renderCallback(name string) string {
	var inner strings.Builder
	for i, p := range t.Pointers {
		inner.WriteByte('*')
		if p.Const {
			inner.WriteString(" const")
			if i < len(t.Pointers)-1 || name != "" {
				inner.WriteByte(' ')
			}
		}
	}
	inner.WriteString(name)
	for _, d := range t.Dims {
		inner.WriteString("[" + d + "]")
	}
	return t.Signature.Return.Render() + " (" + inner.String() + ")(" + t.Signature.renderParams() + ")"
}

// Signature is the shape of a function or function pointer.
type Signature struct {
	// Return is the return type.
	Return TypeRef

	// Params are the parameters in declaration order. `()` and `(void)`
	// both produce an empty list.
	Params []Parameter

	// Variadic is set when the parameter list ends with `...`.
	Variadic bool
}

func (s Signature) renderParams() string {
	if len(s.Params) == 0 && !s.Variadic {
		return "void"
	}
	parts := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		parts = append(parts, p.Type.RenderDecl(p.Name))
	}
	if s.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// Parameter is a single function or callback parameter.
type Parameter struct {
	// Name is empty for unnamed parameters.
	Name string

	// Type is the parameter type.
	Type TypeRef
}
