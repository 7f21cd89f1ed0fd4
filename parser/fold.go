package parser

import (
	"strconv"
	"strings"

	"github.com/broady/capir/ir"
)

// binaryPrec is the C precedence of the supported binary operators.
var binaryPrec = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4,
	">>": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
}

// folder evaluates enumerator initializers: integer and character literals,
// references to earlier enumerators, unary - + ~, and the binary operators
// in binaryPrec with parentheses.
type folder struct {
	c   *cursor
	env map[string]int64
}

// fold evaluates toks against env.
func fold(toks []Token, env map[string]int64) (int64, error) {
	f := &folder{c: newCursor(toks), env: env}
	if f.c.done() {
		return 0, f.unresolvedf("empty expression")
	}
	v, err := f.expr(1)
	if err != nil {
		return 0, err
	}
	if !f.c.done() {
		return 0, f.unresolvedf("unexpected %q", f.c.peek().Val)
	}
	return v, nil
}

func (f *folder) unresolvedf(format string, args ...any) *parseError {
	e := f.c.syntaxf(format, args...)
	e.kind = ir.UnresolvedExpression
	return e
}

// expr parses a binary expression whose operators bind at least minPrec.
func (f *folder) expr(minPrec int) (int64, error) {
	lhs, err := f.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := f.c.peek()
		prec, ok := binaryPrec[op.Val]
		if !ok || op.Kind == CHAR || op.Kind == STRING || prec < minPrec {
			return lhs, nil
		}
		f.c.next()
		rhs, err := f.expr(prec + 1)
		if err != nil {
			return 0, err
		}
		if lhs, err = f.apply(op, lhs, rhs); err != nil {
			return 0, err
		}
	}
}

func (f *folder) apply(op Token, lhs, rhs int64) (int64, error) {
	switch op.Val {
	case "|":
		return lhs | rhs, nil
	case "^":
		return lhs ^ rhs, nil
	case "&":
		return lhs & rhs, nil
	case "<<":
		if rhs < 0 || rhs > 63 {
			return 0, &parseError{kind: ir.UnresolvedExpression, tok: op, msg: "shift count out of range"}
		}
		return lhs << rhs, nil
	case ">>":
		if rhs < 0 || rhs > 63 {
			return 0, &parseError{kind: ir.UnresolvedExpression, tok: op, msg: "shift count out of range"}
		}
		return lhs >> rhs, nil
	case "+":
		return lhs + rhs, nil
	case "-":
		return lhs - rhs, nil
	case "*":
		return lhs * rhs, nil
	case "/", "%":
		if rhs == 0 {
			return 0, &parseError{kind: ir.UnresolvedExpression, tok: op, msg: "division by zero"}
		}
		if op.Val == "/" {
			return lhs / rhs, nil
		}
		return lhs % rhs, nil
	}
	return 0, &parseError{kind: ir.UnresolvedExpression, tok: op, msg: "unsupported operator " + op.Val}
}

func (f *folder) unary() (int64, error) {
	t := f.c.peek()
	switch {
	case t.Is("-"), t.Is("+"), t.Is("~"):
		f.c.next()
		v, err := f.unary()
		if err != nil {
			return 0, err
		}
		switch t.Val {
		case "-":
			return -v, nil
		case "~":
			return ^v, nil
		}
		return v, nil
	case t.Kind == LPAREN:
		f.c.next()
		v, err := f.expr(1)
		if err != nil {
			return 0, err
		}
		if f.c.peek().Kind != RPAREN {
			return 0, f.unresolvedf("expected ')', got %q", f.c.peek().Val)
		}
		f.c.next()
		return v, nil
	case t.Kind == INT:
		f.c.next()
		v, ok := parseInt(t.Val)
		if !ok {
			return 0, &parseError{kind: ir.UnresolvedExpression, tok: t, msg: "invalid integer literal " + t.Val}
		}
		return v, nil
	case t.Kind == CHAR:
		f.c.next()
		v, ok := parseChar(t.Val)
		if !ok {
			return 0, &parseError{kind: ir.UnresolvedExpression, tok: t, msg: "invalid character literal " + t.Val}
		}
		return v, nil
	case t.Kind == IDENT:
		f.c.next()
		if v, ok := f.env[t.Val]; ok {
			return v, nil
		}
		return 0, &parseError{kind: ir.UnresolvedExpression, tok: t, msg: "unknown identifier " + t.Val}
	}
	return 0, f.unresolvedf("unexpected %q", t.Val)
}

// parseInt parses a C integer literal in any base with u/l suffixes.
func parseInt(lit string) (int64, bool) {
	s := strings.TrimRight(lit, "uUlL")
	if s == "" {
		return 0, false
	}
	// C octal is a bare leading zero.
	if len(s) > 1 && s[0] == '0' && isNumeric(s[1]) {
		s = "0o" + s[1:]
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, true
	}
	// Values above MaxInt64 wrap, as an unsigned enum constant would.
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return int64(u), true
}

var simpleEscapes = map[byte]int64{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'?':  '?',
}

// parseChar evaluates a character constant. Multi-character constants
// such as 'RV32' pack bytes big-endian like GCC.
func parseChar(lit string) (int64, bool) {
	if i := strings.IndexByte(lit, '\''); i > 0 {
		lit = lit[i:] // L'x', u'x'
	}
	if len(lit) < 3 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return 0, false
	}
	body := lit[1 : len(lit)-1]

	var chars []int64
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			chars = append(chars, int64(body[i]))
			i++
			continue
		}
		if i+1 >= len(body) {
			return 0, false
		}
		e := body[i+1]
		switch {
		case e == 'x':
			j := i + 2
			for j < len(body) && strings.IndexByte("0123456789abcdefABCDEF", body[j]) >= 0 {
				j++
			}
			v, err := strconv.ParseInt(body[i+2:j], 16, 64)
			if err != nil {
				return 0, false
			}
			chars = append(chars, v)
			i = j
		case e >= '0' && e <= '7':
			j := i + 1
			for j < len(body) && j < i+4 && body[j] >= '0' && body[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseInt(body[i+1:j], 8, 64)
			chars = append(chars, v)
			i = j
		default:
			v, ok := simpleEscapes[e]
			if !ok {
				return 0, false
			}
			chars = append(chars, v)
			i += 2
		}
	}

	var v int64
	for _, ch := range chars {
		v = v<<8 | ch&0xff
	}
	if len(chars) == 1 {
		v = chars[0]
	}
	return v, true
}
