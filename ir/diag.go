package ir

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Sentinel errors matched by Diagnostic.Unwrap.
var (
	ErrSyntax               = errors.Base("syntax error")
	ErrUnsupported          = errors.Base("unsupported construct")
	ErrUnresolved           = errors.Base("unresolved expression")
	ErrDuplicate            = errors.Base("duplicate declaration")
	ErrMissingDocumentation = errors.Base("missing documentation")
)

// DiagKind identifies the category of a diagnostic.
type DiagKind int

const (
	// SyntaxError is a malformed token sequence: unbalanced delimiters or an
	// unparseable type expression.
	SyntaxError DiagKind = iota

	// UnsupportedConstruct is a recognized but deliberately unsupported
	// shape, such as a function-pointer-valued parameter.
	UnsupportedConstruct

	// UnresolvedExpression is an enumerator initializer outside the
	// supported constant-folding subset.
	UnresolvedExpression

	// DuplicateDeclaration is a second declaration of an already declared name.
	DuplicateDeclaration

	// MissingDocumentation is a warning for an undocumented declaration.
	// The declaration is kept.
	MissingDocumentation
)

// String returns the diagnostic kind name.
func (k DiagKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case UnsupportedConstruct:
		return "UnsupportedConstruct"
	case UnresolvedExpression:
		return "UnresolvedExpression"
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case MissingDocumentation:
		return "MissingDocumentation"
	default:
		return "Unknown"
	}
}

func (k DiagKind) sentinel() error {
	switch k {
	case SyntaxError:
		return ErrSyntax
	case UnsupportedConstruct:
		return ErrUnsupported
	case UnresolvedExpression:
		return ErrUnresolved
	case DuplicateDeclaration:
		return ErrDuplicate
	case MissingDocumentation:
		return ErrMissingDocumentation
	default:
		return nil
	}
}

// Severity ranks diagnostics.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a non-fatal per-declaration issue. Error-severity
// diagnostics mean the declaration was dropped from the document.
type Diagnostic struct {
	Kind DiagKind

	// Span is the source range of the offending declaration or token.
	Span Span

	// Name is the declaration name, when it could be determined.
	Name string

	// Message is a human-readable description.
	Message string
}

// Severity returns SeverityWarning for MissingDocumentation, SeverityError
// otherwise.
func (d Diagnostic) Severity() Severity {
	if d.Kind == MissingDocumentation {
		return SeverityWarning
	}
	return SeverityError
}

func (d Diagnostic) Error() string {
	if d.Name != "" {
		return fmt.Sprintf("%s: %s: %s: %s", d.Span, d.Kind, d.Name, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Kind, d.Message)
}

// Unwrap allows errors.Is(d, ir.ErrSyntax) and friends.
func (d Diagnostic) Unwrap() error {
	return d.Kind.sentinel()
}
