package ir

import (
	"fmt"
	"strings"
)

// RenderC returns C source text equivalent to the declaration, modulo
// whitespace and attributes other than visibility and deprecation.
func RenderC(d Declaration) string {
	var b strings.Builder
	renderDoc(&b, d.Doc(), "")

	switch decl := d.(type) {
	case *FunctionDecl:
		if decl.Public {
			b.WriteString(`__attribute__((visibility("default"))) `)
		}
		if decl.Deprecated {
			b.WriteString("__attribute__((deprecated)) ")
		}
		b.WriteString(decl.Signature.Return.RenderDecl(decl.Name + "(" + decl.Signature.renderParams() + ")"))
		b.WriteString(";\n")

	case *CallbackDecl:
		b.WriteString("typedef " + decl.CallbackType().RenderDecl(decl.Name) + ";\n")

	case *TypedefDecl:
		b.WriteString("typedef " + decl.Target.RenderDecl(decl.Name) + ";\n")

	case *EnumDecl:
		if decl.Typedef {
			b.WriteString("typedef ")
		}
		b.WriteString("enum ")
		if decl.Tag != "" {
			b.WriteString(decl.Tag + " ")
		}
		b.WriteString("{\n")
		for i, e := range decl.Enumerators {
			renderDoc(&b, e.Documentation, "  ")
			b.WriteString("  " + e.Name)
			if e.Deprecated {
				b.WriteString(" __attribute__((deprecated))")
			}
			lit := e.Literal
			if lit == "" {
				lit = fmt.Sprint(e.Value)
			}
			b.WriteString(" = " + lit)
			if i < len(decl.Enumerators)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("}")
		if decl.Typedef {
			b.WriteString(" " + decl.Name)
		}
		b.WriteString(";\n")

	case *StructDecl:
		if decl.Typedef {
			b.WriteString("typedef ")
		}
		b.WriteString(decl.Aggregate.Kind.String() + " ")
		if decl.Tag != "" {
			b.WriteString(decl.Tag + " ")
		}
		renderBody(&b, decl.Aggregate, "")
		if decl.Typedef {
			b.WriteString(" " + decl.Name)
		}
		b.WriteString(";\n")
	}
	return b.String()
}

func renderBody(b *strings.Builder, agg Aggregate, indent string) {
	b.WriteString("{\n")
	inner := indent + "  "
	for _, f := range agg.Fields {
		switch field := f.(type) {
		case *PrimitiveField:
			renderDoc(b, field.Documentation, inner)
			b.WriteString(inner + field.Type.RenderDecl(field.Name))
			if field.BitWidth > 0 {
				fmt.Fprintf(b, " : %d", field.BitWidth)
			}
			if field.Deprecated {
				b.WriteString(" __attribute__((deprecated))")
			}
			if field.Default != nil {
				b.WriteString(" = " + *field.Default)
			}
			b.WriteString(";\n")
		case *NestedAggregate:
			renderDoc(b, field.Documentation, inner)
			b.WriteString(inner + field.Aggregate.Kind.String() + " ")
			renderBody(b, field.Aggregate, inner)
			if field.Name != "" {
				b.WriteString(" " + field.Name)
			}
			b.WriteString(";\n")
		}
	}
	b.WriteString(indent + "}")
}

func renderDoc(b *strings.Builder, doc Documentation, indent string) {
	switch len(doc.Lines) {
	case 0:
		return
	case 1:
		b.WriteString(indent + "/** " + doc.Lines[0] + " */\n")
	default:
		b.WriteString(indent + "/** " + doc.Lines[0] + "\n")
		for _, line := range doc.Lines[1:] {
			b.WriteString(strings.TrimRight(indent+" * "+line, " ") + "\n")
		}
		b.WriteString(indent + " */\n")
	}
}
