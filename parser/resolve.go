package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/broady/capir/ir"
)

// resolver turns declaration units into IR. It only reads shared state,
// so units may be resolved concurrently.
type resolver struct {
	file string
	toks []Token
	docs *docIndex
}

// resolved is the outcome of resolving one unit.
type resolved struct {
	decl  ir.Declaration
	name  string // known even when err is set, if the parser got that far
	attrs Attrs
	err   *parseError
}

func (r *resolver) span(start, end int) ir.Span {
	if end <= start {
		end = start + 1
	}
	first, last := r.toks[start], r.toks[end-1]
	return ir.Span{
		File:        r.file,
		StartLine:   first.Pos.Line,
		StartColumn: first.Pos.Col,
		EndLine:     last.End.Line,
		EndColumn:   last.End.Col,
	}
}

func unitAttrs(toks []Token) Attrs {
	var at Attrs
	for _, t := range toks {
		at |= t.Attrs
	}
	return at
}

func asParseError(err error) *parseError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*parseError); ok {
		return pe
	}
	return &parseError{kind: ir.SyntaxError, msg: err.Error()}
}

func (r *resolver) resolve(u unit) resolved {
	toks := r.toks[u.start:u.end]
	res := resolved{attrs: unitAttrs(toks)}
	var err error
	switch u.class {
	case classFunction:
		res.decl, res.name, err = r.function(u)
	case classCallback:
		res.decl, res.name, err = r.callback(u)
	case classTypedef:
		res.decl, res.name, err = r.typedef(u)
	case classEnum:
		res.decl, res.name, err = r.enum(u)
	case classAggregate:
		res.decl, res.name, err = r.aggregate(u)
	}
	res.err = asParseError(err)
	if res.err != nil {
		res.decl = nil
		if res.err.tok.Kind == EOF && res.err.tok.Pos == (Pos{}) {
			res.err.tok = toks[0]
		}
	}
	return res
}

// expectEnd requires the unit's terminating `;` and nothing after it.
func expectEnd(c *cursor) error {
	if c.peek().Kind != SEMICOLON {
		return c.syntaxf("expected ';', got %q", c.peek().Val)
	}
	c.next()
	if !c.done() {
		return c.syntaxf("unexpected %q after ';'", c.peek().Val)
	}
	return nil
}

func (r *resolver) function(u unit) (ir.Declaration, string, error) {
	toks := r.toks[u.start:u.end]
	c := newCursor(toks)
	c.skipStorage()
	base, err := c.parseSpecifiers()
	if err != nil {
		return nil, "", err
	}
	name, ret, err := c.parseDeclarator(base)
	if err != nil {
		return nil, name, err
	}
	if name == "" {
		return nil, "", c.syntaxf("expected function name")
	}
	sig, err := c.parseParams()
	if err != nil {
		return nil, name, err
	}
	sig.Return = ret
	if err := expectEnd(c); err != nil {
		return nil, name, err
	}

	fn := ir.NewFunction(name, sig, r.docs.leading(u.start), r.span(u.start, u.end))
	at := unitAttrs(toks)
	fn.Public = at.Has(AttrPublic)
	fn.Deprecated = at.Has(AttrDeprecated)
	return fn, name, nil
}

func (r *resolver) callback(u unit) (ir.Declaration, string, error) {
	c := newCursor(r.toks[u.start:u.end])
	c.skipStorage()
	if !c.accept("typedef") {
		return nil, "", c.syntaxf("expected typedef")
	}
	base, err := c.parseSpecifiers()
	if err != nil {
		return nil, "", err
	}
	name, t, err := c.parseDeclarator(base)
	if err != nil {
		return nil, name, err
	}
	if name == "" {
		return nil, "", c.syntaxf("expected callback name")
	}
	if t.Kind != ir.TypeCallback || len(t.Pointers) != 1 || len(t.Dims) > 0 {
		return nil, name, &parseError{kind: ir.UnsupportedConstruct, tok: r.toks[u.start], msg: "function pointer typedef with extra indirection"}
	}
	if err := expectEnd(c); err != nil {
		return nil, name, err
	}
	return ir.NewCallback(name, *t.Signature, r.docs.leading(u.start), r.span(u.start, u.end)), name, nil
}

func (r *resolver) typedef(u unit) (ir.Declaration, string, error) {
	c := newCursor(r.toks[u.start:u.end])
	c.skipStorage()
	if !c.accept("typedef") {
		return nil, "", c.syntaxf("expected typedef")
	}
	base, err := c.parseSpecifiers()
	if err != nil {
		return nil, "", err
	}
	name, t, err := c.parseDeclarator(base)
	if err != nil {
		return nil, name, err
	}
	if name == "" {
		return nil, "", c.syntaxf("expected typedef name")
	}
	switch c.peek().Kind {
	case LPAREN:
		return nil, name, c.unsupportedf("function type typedef")
	case COMMA:
		return nil, name, c.unsupportedf("typedef with multiple declarators")
	}
	if err := expectEnd(c); err != nil {
		return nil, name, err
	}

	td := ir.NewTypedef(name, t, r.docs.leading(u.start), r.span(u.start, u.end))
	td.Opaque = t.Kind == ir.TypeReference && (t.Tag == "struct" || t.Tag == "union") && t.Depth() == 0
	return td, name, nil
}

// header reads `[typedef] (enum|struct|union) [tag] {` and returns the
// keyword, tag and the unit-relative index of the `{`.
func header(c *cursor) (typedef bool, keyword, tag string, err error) {
	c.skipStorage()
	typedef = c.accept("typedef")
	for c.peek().Kind == IDENT && qualifiers[c.peek().Val] {
		c.next()
	}
	keyword = c.next().Val
	if c.peek().Kind == IDENT {
		tag = c.next().Val
	}
	if c.peek().Kind != LBRACE {
		return typedef, keyword, tag, c.syntaxf("expected '{', got %q", c.peek().Val)
	}
	return typedef, keyword, tag, nil
}

// matchBrace returns the index of the brace closing toks[open].
func matchBrace(toks []Token, open, limit int) (int, bool) {
	depth := 0
	for i := open; i < limit; i++ {
		switch toks[i].Kind {
		case LBRACE:
			depth++
		case RBRACE:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// trailer reads what follows a closing brace: the typedef name for typedef
// definitions, and optional variable declarators otherwise.
func trailer(c *cursor, typedef bool) (string, error) {
	if !typedef {
		for c.peek().Kind != SEMICOLON && !c.done() {
			c.next()
		}
		return "", expectEnd(c)
	}
	if c.peek().Kind == STAR {
		return "", c.unsupportedf("typedef of a pointer to an inline definition")
	}
	if c.peek().Kind != IDENT {
		return "", c.syntaxf("expected typedef name, got %q", c.peek().Val)
	}
	name := c.next().Val
	if c.peek().Kind == COMMA {
		return name, c.unsupportedf("typedef with multiple declarators")
	}
	return name, expectEnd(c)
}

func (r *resolver) enum(u unit) (ir.Declaration, string, error) {
	c := newCursor(r.toks[u.start:u.end])
	typedef, _, tag, err := header(c)
	if err != nil {
		return nil, tag, err
	}
	open := u.start + c.pos
	rbrace, ok := matchBrace(r.toks, open, u.end)
	if !ok {
		return nil, tag, c.syntaxf("unbalanced '{'")
	}
	c.pos = rbrace + 1 - u.start
	name, err := trailer(c, typedef)
	if !typedef {
		name = tag
	}
	if err != nil {
		return nil, name, err
	}
	if name == "" {
		// Anonymous enums declare constants only.
		return nil, "", nil
	}

	enumerators, err := r.enumerators(open+1, rbrace)
	if err != nil {
		return nil, name, err
	}
	e := ir.NewEnum(name, enumerators, r.docs.leading(u.start), r.span(u.start, u.end))
	e.Tag = tag
	e.Typedef = typedef
	return e, name, nil
}

// splitTopLevel splits [start, end) at depth-0 separators. Each part is
// returned as a [start, end) pair; empty parts are dropped.
func (r *resolver) splitTopLevel(start, end int, sep TokenKind) [][2]int {
	var parts [][2]int
	depth := 0
	from := start
	for i := start; i < end; i++ {
		switch r.toks[i].Kind {
		case LPAREN, LBRACE, LBRACK:
			depth++
		case RPAREN, RBRACE, RBRACK:
			depth--
		case sep:
			if depth == 0 {
				if i > from {
					parts = append(parts, [2]int{from, i})
				}
				from = i + 1
			}
		}
	}
	if end > from {
		parts = append(parts, [2]int{from, end})
	}
	return parts
}

// following returns the index of the first token after the separator that
// ends part, or end when the part runs to the end of the list.
func (r *resolver) following(part [2]int, end int) int {
	if part[1] < end {
		return part[1] + 1
	}
	return end
}

func (r *resolver) enumerators(start, end int) ([]ir.Enumerator, error) {
	var (
		out      []ir.Enumerator
		env      = make(map[string]int64)
		next     int64
		overflow bool
	)
	for _, part := range r.splitTopLevel(start, end, COMMA) {
		c := newCursor(r.toks[part[0]:part[1]])
		nameTok := c.next()
		if nameTok.Kind != IDENT {
			return nil, &parseError{kind: ir.SyntaxError, tok: nameTok, msg: fmt.Sprintf("expected enumerator name, got %q", nameTok.Val)}
		}
		e := ir.Enumerator{
			Name:       nameTok.Val,
			Deprecated: unitAttrs(r.toks[part[0]:part[1]]).Has(AttrDeprecated),
		}

		if c.accept("=") {
			expr := r.toks[part[0]+c.pos : part[1]]
			v, err := fold(expr, env)
			if err != nil {
				pe := asParseError(err)
				pe.msg = e.Name + ": " + pe.msg
				return nil, pe
			}
			e.Value = v
			e.Literal = literal(expr, v)
		} else if !c.done() {
			return nil, c.syntaxf("unexpected %q after enumerator %s", c.peek().Val, e.Name)
		} else {
			if overflow {
				return nil, &parseError{kind: ir.UnresolvedExpression, tok: nameTok, msg: e.Name + ": implicit value overflows int64"}
			}
			e.Value = next
			e.Literal = strconv.FormatInt(next, 10)
		}

		e.Documentation = r.docs.leading(part[0])
		if e.Documentation.IsZero() {
			e.Documentation = r.docs.trailing(part[1]-1, r.following(part, end))
		}

		env[e.Name] = e.Value
		overflow = e.Value == math.MaxInt64
		next = e.Value + 1
		out = append(out, e)
	}
	return out, nil
}

// literal spells a resolved value the way generated code should: in hex
// when the initializer is written in hex, in decimal otherwise.
func literal(expr []Token, v int64) string {
	if len(expr) > 0 && expr[0].Kind == INT {
		if s := strings.ToLower(expr[0].Val); strings.HasPrefix(s, "0x") {
			if v < 0 {
				return fmt.Sprintf("-0x%x", -v)
			}
			return fmt.Sprintf("0x%x", v)
		}
	}
	return strconv.FormatInt(v, 10)
}

func (r *resolver) aggregate(u unit) (ir.Declaration, string, error) {
	c := newCursor(r.toks[u.start:u.end])
	typedef, keyword, tag, err := header(c)
	if err != nil {
		return nil, tag, err
	}
	open := u.start + c.pos
	rbrace, ok := matchBrace(r.toks, open, u.end)
	if !ok {
		return nil, tag, c.syntaxf("unbalanced '{'")
	}
	c.pos = rbrace + 1 - u.start
	name, err := trailer(c, typedef)
	if !typedef {
		name = tag
	}
	if err != nil {
		return nil, name, err
	}
	if name == "" {
		return nil, "", nil
	}

	agg, err := r.aggregateBody(aggregateKind(keyword), open+1, rbrace)
	if err != nil {
		return nil, name, err
	}
	s := ir.NewStruct(name, agg, r.docs.leading(u.start), r.span(u.start, u.end))
	s.Tag = tag
	s.Typedef = typedef
	return s, name, nil
}

func aggregateKind(keyword string) ir.AggregateKind {
	if keyword == "union" {
		return ir.AggregateUnion
	}
	return ir.AggregateStruct
}

// aggregateBody resolves the members in [start, end). Anonymous nested
// aggregates are flattened into the enclosing member list.
func (r *resolver) aggregateBody(kind ir.AggregateKind, start, end int) (ir.Aggregate, error) {
	agg := ir.Aggregate{Kind: kind}
	for _, part := range r.splitTopLevel(start, end, SEMICOLON) {
		fields, err := r.member(part, r.following(part, end))
		if err != nil {
			return agg, err
		}
		agg.Fields = append(agg.Fields, fields...)
	}
	return agg, nil
}

// member resolves one `;`-terminated member declaration in part.
func (r *resolver) member(part [2]int, next int) ([]ir.Field, error) {
	toks := r.toks[part[0]:part[1]]
	doc := r.docs.leading(part[0])
	if doc.IsZero() {
		doc = r.docs.trailing(part[1]-1, next)
	}
	deprecated := unitAttrs(toks).Has(AttrDeprecated)

	c := newCursor(toks)
	for c.peek().Kind == IDENT && qualifiers[c.peek().Val] {
		c.next()
	}
	if kw := c.peek(); kw.Kind == IDENT && tagKeywords[kw.Val] {
		j := 1
		if c.peekAt(1).Kind == IDENT {
			j = 2
		}
		if c.peekAt(j).Kind == LBRACE {
			if kw.Val == "enum" {
				return nil, &parseError{kind: ir.UnsupportedConstruct, tok: kw, msg: "inline enum definition in aggregate"}
			}
			return r.nested(aggregateKind(kw.Val), part[0]+c.pos+j, part[1], doc)
		}
	}

	c.pos = 0
	base, err := c.parseSpecifiers()
	if err != nil {
		return nil, err
	}

	var fields []ir.Field
	for {
		name, t, err := c.parseDeclarator(base)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, c.syntaxf("expected member name")
		}
		if c.peek().Kind == LPAREN {
			return nil, c.unsupportedf("function member %s", name)
		}
		f := &ir.PrimitiveField{Name: name, Type: t, Deprecated: deprecated, Documentation: doc}

		if c.peek().Kind == COLON {
			c.next()
			w := c.next()
			width, convErr := strconv.Atoi(w.Val)
			if w.Kind != INT || convErr != nil {
				return nil, &parseError{kind: ir.SyntaxError, tok: w, msg: fmt.Sprintf("invalid bit-field width %q", w.Val)}
			}
			f.BitWidth = width
		}
		if c.accept("=") {
			var init []Token
			depth := 0
			for !c.done() && !(depth == 0 && c.peek().Kind == COMMA) {
				switch c.peek().Kind {
				case LPAREN, LBRACE, LBRACK:
					depth++
				case RPAREN, RBRACE, RBRACK:
					depth--
				}
				init = append(init, c.next())
			}
			if len(init) == 0 {
				return nil, c.syntaxf("expected initializer for %s", name)
			}
			def := joinTokens(init)
			f.Default = &def
		}
		fields = append(fields, f)

		if c.done() {
			return fields, nil
		}
		if c.peek().Kind != COMMA {
			return nil, c.syntaxf("unexpected %q in member declaration", c.peek().Val)
		}
		c.next()
	}
}

// nested resolves `struct|union { ... } [name]` starting at the `{` index open.
func (r *resolver) nested(kind ir.AggregateKind, open, end int, doc ir.Documentation) ([]ir.Field, error) {
	rbrace, ok := matchBrace(r.toks, open, end)
	if !ok {
		return nil, &parseError{kind: ir.SyntaxError, tok: r.toks[open], msg: "unbalanced '{'"}
	}
	agg, err := r.aggregateBody(kind, open+1, rbrace)
	if err != nil {
		return nil, err
	}

	rest := r.toks[rbrace+1 : end]
	switch {
	case len(rest) == 0:
		return agg.Fields, nil
	case len(rest) == 1 && rest[0].Kind == IDENT:
		return []ir.Field{&ir.NestedAggregate{Name: rest[0].Val, Aggregate: agg, Documentation: doc}}, nil
	}
	return nil, &parseError{kind: ir.UnsupportedConstruct, tok: rest[0], msg: "nested " + kind.String() + " with a complex declarator"}
}
