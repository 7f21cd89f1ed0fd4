package parser

import "fmt"

// unitClass is the shape of a top-level declaration unit.
type unitClass int

const (
	classOther unitClass = iota
	classFunction
	classFunctionDefinition
	classEnum
	classAggregate
	classCallback
	classTypedef
)

func (c unitClass) String() string {
	switch c {
	case classFunction:
		return "function"
	case classFunctionDefinition:
		return "function definition"
	case classEnum:
		return "enum"
	case classAggregate:
		return "aggregate"
	case classCallback:
		return "callback"
	case classTypedef:
		return "typedef"
	default:
		return "other"
	}
}

// unit is one top-level declaration: the tokens from its first token up to
// and including its terminating `;` (or the closing `}` of a function body).
type unit struct {
	class unitClass
	start int // index of the first token
	end   int // index one past the last token
}

// segmentError reports a unit that could not be delimited.
type segmentError struct {
	start int
	at    int
	msg   string
}

// segment splits the token stream into top-level units. `extern "C" { ... }`
// wrappers are transparent. On unbalanced input the offending unit is
// reported and scanning resumes after the next top-level `;`.
func segment(toks []Token) ([]unit, []segmentError) {
	var (
		units   []unit
		errs    []segmentError
		linkage int
	)

	i := 0
	for i < len(toks) && toks[i].Kind != EOF {
		t := toks[i]
		switch {
		case t.Kind == SEMICOLON:
			i++
			continue
		case t.Is("extern") && i+2 < len(toks) && toks[i+1].Kind == STRING && toks[i+2].Kind == LBRACE:
			linkage++
			i += 3
			continue
		case t.Kind == RBRACE && linkage > 0:
			linkage--
			i++
			continue
		}

		end, err := scanUnit(toks, i)
		if err != nil {
			errs = append(errs, segmentError{start: i, at: err.at, msg: err.msg})
			if err.at == i {
				// A stray token cannot start a unit; drop only that token.
				i++
			} else {
				i = resume(toks, i)
			}
			continue
		}
		u := unit{start: i, end: end}
		u.class = classify(toks[u.start:u.end])
		units = append(units, u)
		i = end
	}
	return units, errs
}

type scanError struct {
	at  int
	msg string
}

var closerFor = map[TokenKind]TokenKind{
	LPAREN: RPAREN,
	LBRACE: RBRACE,
	LBRACK: RBRACK,
}

// scanUnit returns the index one past the end of the unit starting at i.
func scanUnit(toks []Token, i int) (int, *scanError) {
	var stack []TokenKind
	bodyAfterParen := false
	for j := i; j < len(toks); j++ {
		t := toks[j]
		switch t.Kind {
		case EOF:
			if len(stack) > 0 {
				return 0, &scanError{at: j, msg: fmt.Sprintf("unbalanced %s at end of input", closerFor[stack[len(stack)-1]])}
			}
			return 0, &scanError{at: j, msg: "missing ';' at end of input"}
		case ILLEGAL:
			return 0, &scanError{at: j, msg: fmt.Sprintf("unexpected character %q", t.Val)}
		case LPAREN, LBRACK, LBRACE:
			if t.Kind == LBRACE && len(stack) == 0 {
				bodyAfterParen = j > i && toks[j-1].Kind == RPAREN
			}
			stack = append(stack, closerFor[t.Kind])
		case RPAREN, RBRACK, RBRACE:
			if len(stack) == 0 || stack[len(stack)-1] != t.Kind {
				return 0, &scanError{at: j, msg: fmt.Sprintf("unexpected %s", t.Kind)}
			}
			stack = stack[:len(stack)-1]
			if t.Kind == RBRACE && len(stack) == 0 && bodyAfterParen {
				return j + 1, nil
			}
		case SEMICOLON:
			if len(stack) == 0 {
				return j + 1, nil
			}
		}
	}
	return len(toks), nil
}

// resume returns the index just after the next `;` outside any brace opened
// since start, or just after the closing brace of a function body. Parens
// are not tracked: an unclosed paren is the usual reason to be here. Input
// whose braces never close is skipped to the end.
func resume(toks []Token, start int) int {
	depth := 0
	body := false
	for j := start; j < len(toks); j++ {
		switch toks[j].Kind {
		case LBRACE:
			if depth == 0 {
				body = j > start && toks[j-1].Kind == RPAREN
			}
			depth++
		case RBRACE:
			depth--
			if depth == 0 && body {
				return j + 1
			}
		case SEMICOLON:
			if depth <= 0 {
				return j + 1
			}
		}
	}
	return len(toks)
}

// classify recognizes the declaration shape of a unit.
func classify(toks []Token) unitClass {
	i := 0
	isTypedef := false
specifiers:
	for ; i < len(toks) && toks[i].Kind == IDENT; i++ {
		switch {
		case toks[i].Is("typedef"):
			isTypedef = true
		case storageClasses[toks[i].Val] || qualifiers[toks[i].Val]:
		default:
			break specifiers
		}
	}
	if i >= len(toks) {
		return classOther
	}

	// Tagged definitions: enum/struct/union [tag] { ... }.
	if tagKeywords[toks[i].Val] {
		j := i + 1
		if j < len(toks) && toks[j].Kind == IDENT {
			j++
		}
		if j < len(toks) && toks[j].Kind == LBRACE {
			if toks[i].Val == "enum" {
				return classEnum
			}
			return classAggregate
		}
	}

	last := toks[len(toks)-1]
	if last.Kind == RBRACE {
		return classFunctionDefinition
	}

	// Find the first top-level parenthesis.
	depth := 0
	paren := -1
	for j := i; j < len(toks); j++ {
		switch toks[j].Kind {
		case LPAREN:
			if depth == 0 && paren < 0 {
				paren = j
			}
			depth++
		case RPAREN:
			depth--
		case LBRACE, LBRACK:
			depth++
		case RBRACE, RBRACK:
			depth--
		}
	}

	pointerDeclarator := paren >= 0 && paren+1 < len(toks) && toks[paren+1].Kind == STAR
	switch {
	case isTypedef && pointerDeclarator:
		return classCallback
	case isTypedef:
		return classTypedef
	case hasTopLevel(toks, ASSIGN):
		return classOther
	case paren >= 0 && !pointerDeclarator && paren > i && toks[paren-1].Kind == IDENT:
		return classFunction
	case pointerDeclarator && returnsFunctionPointer(toks[paren+1:]):
		// ret (*name(params))(params)
		return classFunction
	}
	return classOther
}

// returnsFunctionPointer matches `* ... name (` after the opening parenthesis.
func returnsFunctionPointer(toks []Token) bool {
	i := 0
	for i < len(toks) && (toks[i].Kind == STAR || qualifiers[toks[i].Val]) {
		i++
	}
	return i+1 < len(toks) && toks[i].Kind == IDENT && toks[i+1].Kind == LPAREN
}

func hasTopLevel(toks []Token, kind TokenKind) bool {
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case LPAREN, LBRACE, LBRACK:
			depth++
		case RPAREN, RBRACE, RBRACK:
			depth--
		case kind:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
