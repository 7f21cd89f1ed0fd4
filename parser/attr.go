package parser

// Markers configures the macro names the normalizer recognizes.
type Markers struct {
	// Public are macros that expand to a default-visibility attribute.
	Public []string
	// Deprecated are macros that expand to a deprecation attribute.
	Deprecated []string
}

// dropped are tokens with no meaning for the declaration shapes we parse.
var dropped = map[string]bool{
	"restrict":      true,
	"__restrict":    true,
	"__restrict__":  true,
	"__extension__": true,
	"__inline":      true,
	"__inline__":    true,
	"_Noreturn":     true,
	"__cdecl":       true,
	"__stdcall":     true,
}

// attributeIntros are followed by a parenthesized attribute list.
var attributeIntros = map[string]bool{
	"__attribute__": true,
	"__attribute":   true,
	"__declspec":    true,
	"__asm__":       true,
	"__asm":         true,
}

// normalize removes attribute syntax and marker macros from toks, recording
// what they meant as Attrs on a neighbouring token. Markers go to the next
// token, or to the previous one when the next token closes a declaration
// or list (`A1 __attribute__((deprecated)),`).
func normalize(toks []Token, m Markers) []Token {
	public := make(map[string]bool, len(m.Public))
	for _, name := range m.Public {
		public[name] = true
	}
	deprecated := make(map[string]bool, len(m.Deprecated))
	for _, name := range m.Deprecated {
		deprecated[name] = true
	}

	out := make([]Token, 0, len(toks))
	var pending Attrs
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == IDENT {
			switch {
			case public[t.Val]:
				pending |= AttrPublic
				continue
			case deprecated[t.Val]:
				pending |= AttrDeprecated
				continue
			case dropped[t.Val]:
				continue
			case attributeIntros[t.Val] && i+1 < len(toks) && toks[i+1].Kind == LPAREN:
				if end, ok := matchParen(toks, i+1); ok {
					pending |= attributeMarkers(toks[i+1 : end])
					i = end
					continue
				}
			}
		}

		if pending != 0 {
			if closesList(t) && len(out) > 0 {
				out[len(out)-1].Attrs |= pending
			} else {
				t.Attrs |= pending
			}
			pending = 0
		}
		out = append(out, t)
	}
	return out
}

func closesList(t Token) bool {
	switch t.Kind {
	case COMMA, SEMICOLON, RBRACE, RPAREN, EOF:
		return true
	}
	return false
}

// attributeMarkers inspects the tokens of an attribute list.
func attributeMarkers(toks []Token) Attrs {
	var at Attrs
	for i, t := range toks {
		if t.Kind != IDENT {
			continue
		}
		switch t.Val {
		case "deprecated", "__deprecated__":
			at |= AttrDeprecated
		case "dllexport":
			at |= AttrPublic
		case "visibility", "__visibility__":
			if i+2 < len(toks) && toks[i+1].Kind == LPAREN && toks[i+2].Val == `"default"` {
				at |= AttrPublic
			}
		}
	}
	return at
}

// matchParen returns the index of the parenthesis closing toks[open].
func matchParen(toks []Token, open int) (int, bool) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case LPAREN:
			depth++
		case RPAREN:
			depth--
			if depth == 0 {
				return i, true
			}
		case EOF:
			return 0, false
		}
	}
	return 0, false
}
