package parser

import (
	"fmt"
	"strings"

	"github.com/broady/capir/ir"
)

// parseError is a failure to resolve a single declaration.
type parseError struct {
	kind ir.DiagKind
	tok  Token
	msg  string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s: %s", e.tok.Pos, e.msg)
}

// cursor walks the tokens of a single unit.
type cursor struct {
	toks []Token
	pos  int
}

func newCursor(toks []Token) *cursor {
	return &cursor{toks: toks}
}

func (c *cursor) peekAt(n int) Token {
	if c.pos+n < len(c.toks) {
		return c.toks[c.pos+n]
	}
	var end Pos
	if len(c.toks) > 0 {
		end = c.toks[len(c.toks)-1].End
	}
	return Token{Kind: EOF, Pos: end, End: end}
}

func (c *cursor) peek() Token {
	return c.peekAt(0)
}

func (c *cursor) next() Token {
	t := c.peek()
	if c.pos < len(c.toks) {
		c.pos++
	}
	return t
}

func (c *cursor) done() bool {
	return c.pos >= len(c.toks)
}

// accept consumes the next token if it is spelled val.
func (c *cursor) accept(val string) bool {
	if c.peek().Is(val) {
		c.pos++
		return true
	}
	return false
}

func (c *cursor) expect(kind TokenKind) (Token, error) {
	t := c.peek()
	if t.Kind != kind {
		return t, c.syntaxf("expected %s, got %q", kind, t.Val)
	}
	return c.next(), nil
}

func (c *cursor) syntaxf(format string, args ...any) *parseError {
	return &parseError{kind: ir.SyntaxError, tok: c.peek(), msg: fmt.Sprintf(format, args...)}
}

func (c *cursor) unsupportedf(format string, args ...any) *parseError {
	return &parseError{kind: ir.UnsupportedConstruct, tok: c.peek(), msg: fmt.Sprintf(format, args...)}
}

// skipStorage consumes storage classes. It reports whether any was seen.
func (c *cursor) skipStorage() bool {
	seen := false
	for c.peek().Kind == IDENT && storageClasses[c.peek().Val] {
		c.next()
		seen = true
	}
	return seen
}

// parseSpecifiers reads a declaration specifier list: qualifiers plus a
// primitive keyword sequence, a tagged name or a typedef name.
func (c *cursor) parseSpecifiers() (ir.TypeRef, error) {
	var (
		t       ir.TypeRef
		found   bool
		isConst bool
		words   []string
	)

loop:
	for {
		tok := c.peek()
		if tok.Kind != IDENT {
			break
		}
		switch {
		case qualifiers[tok.Val]:
			isConst = isConst || tok.Val == "const"
		case builtinSpecifiers[tok.Val] && !found:
			words = append(words, tok.Val)
		case tagKeywords[tok.Val] && !found && len(words) == 0:
			c.next()
			name := c.peek()
			if name.Kind != IDENT {
				return t, c.syntaxf("expected %s tag name, got %q", tok.Val, name.Val)
			}
			t = ir.Ref(tok.Val, name.Val)
			found = true
		case !found && len(words) == 0:
			if builtinTypedefs[tok.Val] {
				t = ir.Primitive(tok.Val)
			} else {
				t = ir.Ref("", tok.Val)
			}
			found = true
		default:
			break loop
		}
		c.next()
	}

	if len(words) > 0 {
		t = ir.Primitive(strings.Join(words, " "))
		found = true
	}
	if !found {
		return t, c.syntaxf("expected type, got %q", c.peek().Val)
	}
	t.Const = isConst
	return t, nil
}

// parsePointers applies a `*` chain with per-level qualifiers to t.
func (c *cursor) parsePointers(t ir.TypeRef) ir.TypeRef {
	for c.peek().Kind == STAR {
		c.next()
		isConst := false
		for c.peek().Kind == IDENT && qualifiers[c.peek().Val] {
			isConst = isConst || c.next().Val == "const"
		}
		t = t.Pointer(isConst)
	}
	return t
}

// parseDims reads `[N]` suffixes.
func (c *cursor) parseDims() ([]string, error) {
	var dims []string
	for c.peek().Kind == LBRACK {
		c.next()
		var inner []Token
		for c.peek().Kind != RBRACK {
			if c.done() {
				return nil, c.syntaxf("unterminated array dimension")
			}
			inner = append(inner, c.next())
		}
		c.next()
		dims = append(dims, joinTokens(inner))
	}
	return dims, nil
}

// parseDeclarator reads the pointer chain, optional name and array
// dimensions following a specifier list. Function-pointer declarators
// `(*name)(params)` produce a TypeCallback. The cursor is left on a `(`
// when the name is followed by a function parameter list.
func (c *cursor) parseDeclarator(base ir.TypeRef) (string, ir.TypeRef, error) {
	t := c.parsePointers(base)
	if c.peek().Kind == LPAREN && c.peekAt(1).Kind == STAR {
		return c.parseFunctionPointer(t)
	}

	var name string
	if c.peek().Kind == IDENT {
		name = c.next().Val
	}
	if c.peek().Kind == LPAREN {
		return name, t, nil
	}
	dims, err := c.parseDims()
	if err != nil {
		return "", t, err
	}
	t.Dims = dims
	return name, t, nil
}

// parseFunctionPointer reads `(* [const] name [dims])(params)` returning ret.
func (c *cursor) parseFunctionPointer(ret ir.TypeRef) (string, ir.TypeRef, error) {
	c.next() // (
	var levels []ir.PointerLevel
	for c.peek().Kind == STAR {
		c.next()
		isConst := false
		for c.peek().Kind == IDENT && qualifiers[c.peek().Val] {
			isConst = isConst || c.next().Val == "const"
		}
		levels = append(levels, ir.PointerLevel{Const: isConst})
	}

	var name string
	if c.peek().Kind == IDENT {
		name = c.next().Val
	}
	if c.peek().Kind == LPAREN {
		return name, ret, c.unsupportedf("function returning a function pointer")
	}
	dims, err := c.parseDims()
	if err != nil {
		return name, ret, err
	}
	if _, err := c.expect(RPAREN); err != nil {
		return name, ret, err
	}

	sig, err := c.parseParams()
	if err != nil {
		return name, ret, err
	}
	sig.Return = ret

	t := ir.Callback(sig)
	t.Pointers = levels
	t.Dims = dims
	return name, t, nil
}

// parseParams reads a parenthesized parameter list. `()` and `(void)` yield
// no parameters. Function-pointer parameters are unsupported.
func (c *cursor) parseParams() (ir.Signature, error) {
	var sig ir.Signature
	if _, err := c.expect(LPAREN); err != nil {
		return sig, err
	}
	if c.peek().Kind == RPAREN {
		c.next()
		return sig, nil
	}
	if c.peek().Is("void") && c.peekAt(1).Kind == RPAREN {
		c.next()
		c.next()
		return sig, nil
	}

	for {
		if c.peek().Kind == ELLIPSIS {
			c.next()
			sig.Variadic = true
			if _, err := c.expect(RPAREN); err != nil {
				return sig, err
			}
			return sig, nil
		}

		start := c.peek()
		c.skipStorage()
		base, err := c.parseSpecifiers()
		if err != nil {
			return sig, err
		}
		name, t, err := c.parseDeclarator(base)
		if err != nil {
			return sig, err
		}
		if t.Kind == ir.TypeCallback || c.peek().Kind == LPAREN {
			return sig, &parseError{kind: ir.UnsupportedConstruct, tok: start, msg: "function pointer parameter"}
		}
		sig.Params = append(sig.Params, ir.Parameter{Name: name, Type: t})

		switch c.peek().Kind {
		case COMMA:
			c.next()
		case RPAREN:
			c.next()
			return sig, nil
		default:
			return sig, c.syntaxf("expected ',' or ')' in parameter list, got %q", c.peek().Val)
		}
	}
}

// joinTokens spells a token run back as source text, with a space only
// between adjacent word-like tokens.
func joinTokens(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && wordLike(toks[i-1]) && wordLike(t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Val)
	}
	return b.String()
}

func wordLike(t Token) bool {
	switch t.Kind {
	case IDENT, INT, FLOAT, CHAR, STRING:
		return true
	}
	return false
}
