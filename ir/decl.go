package ir

// DeclKind identifies the category of a declaration.
type DeclKind int

const (
	KindFunction DeclKind = iota // Public function prototype
	KindEnum                     // Enumeration (plain or typedef'd)
	KindStruct                   // Struct or union (plain or typedef'd)
	KindCallback                 // Function-pointer typedef
	KindTypedef                  // Plain typedef, including opaque handles
)

// String returns the string representation of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindEnum:
		return "Enum"
	case KindStruct:
		return "Struct"
	case KindCallback:
		return "Callback"
	case KindTypedef:
		return "Typedef"
	default:
		return "Unknown"
	}
}

// Declaration is the base interface for all top-level declarations.
type Declaration interface {
	// Kind returns the declaration kind for type switching.
	Kind() DeclKind

	// DeclName returns the binding-visible identifier. For typedef'd
	// aggregates and enums this is the typedef name, not the tag.
	DeclName() string

	// Doc returns the attached documentation block.
	Doc() Documentation

	// Span returns the source range of the declaration.
	Span() Span

	// Ensure only types in this package can implement Declaration.
	sealed()
}

// declBase holds the attributes shared by every declaration.
type declBase struct {
	// Name is the binding-visible identifier.
	Name string

	// Documentation attached to the declaration.
	Documentation Documentation

	// Source is where the declaration was parsed from.
	Source Span
}

func (d *declBase) DeclName() string   { return d.Name }
func (d *declBase) Doc() Documentation { return d.Documentation }
func (d *declBase) Span() Span         { return d.Source }
func (*declBase) sealed()              {}

// FunctionDecl represents a function prototype.
type FunctionDecl struct {
	declBase

	// Signature holds the return type and parameters.
	Signature Signature

	// Public is set when the declaration carries the public visibility marker.
	Public bool

	// Deprecated is set when the declaration carries a deprecated marker.
	Deprecated bool
}

// Kind returns KindFunction.
func (d *FunctionDecl) Kind() DeclKind { return KindFunction }

// NewFunction returns a FunctionDecl.
func NewFunction(name string, sig Signature, doc Documentation, src Span) *FunctionDecl {
	return &FunctionDecl{declBase: declBase{Name: name, Documentation: doc, Source: src}, Signature: sig}
}

// CallbackDecl represents a function-pointer typedef. It has no identity
// beyond its typedef name; CallbackType returns the equivalent inline type.
type CallbackDecl struct {
	declBase

	// Signature holds the return type and parameters.
	Signature Signature
}

// Kind returns KindCallback.
func (d *CallbackDecl) Kind() DeclKind { return KindCallback }

// NewCallback returns a CallbackDecl.
func NewCallback(name string, sig Signature, doc Documentation, src Span) *CallbackDecl {
	return &CallbackDecl{declBase: declBase{Name: name, Documentation: doc, Source: src}, Signature: sig}
}

// CallbackType returns the callback as an inline function-pointer TypeRef.
func (d *CallbackDecl) CallbackType() TypeRef {
	return Callback(d.Signature)
}

// TypedefDecl represents `typedef <type> name;` without a body, such as
// the opaque handle `typedef struct libvlc_instance_t libvlc_instance_t;`.
type TypedefDecl struct {
	declBase

	// Target is the aliased type.
	Target TypeRef

	// Opaque is set when Target is a tagged struct/union whose body is not
	// part of the parsed unit.
	Opaque bool
}

// Kind returns KindTypedef.
func (d *TypedefDecl) Kind() DeclKind { return KindTypedef }

// NewTypedef returns a TypedefDecl.
func NewTypedef(name string, target TypeRef, doc Documentation, src Span) *TypedefDecl {
	return &TypedefDecl{declBase: declBase{Name: name, Documentation: doc, Source: src}, Target: target}
}
