package parser

import (
	"fmt"
	"strings"
)

// CommentKind classifies comments and other non-token source regions.
type CommentKind int

const (
	// LineComment is a `//` comment.
	LineComment CommentKind = iota
	// BlockComment is a plain `/* */` comment.
	BlockComment
	// DocComment is a `/** */` or `/*!` block documenting what follows.
	DocComment
	// TrailingDocComment is a `/**<` or `///<` block documenting what precedes.
	TrailingDocComment
	// Directive is a preprocessor line.
	Directive
)

// Comment is a comment or preprocessor directive skipped by the lexer.
type Comment struct {
	Kind CommentKind
	Text string
	Pos  Pos
	End  Pos
}

// LexError is returned when the input cannot be tokenized to the end.
type LexError struct {
	Pos Pos
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// lexer tokenizes a header. Preprocessor lines are not interpreted: they are
// recorded as Directive comments and otherwise skipped.
type lexer struct {
	src  string
	off  int
	pos  Pos
	bol  bool // only whitespace since the start of the line
	toks []Token
	cmts []Comment
}

// Lex splits src into tokens and comments. On a lexical error it returns
// everything scanned so far along with the error.
func Lex(src string) ([]Token, []Comment, error) {
	lx := &lexer{src: src, pos: Pos{Line: 1, Col: 1}, bol: true}
	err := lx.run()
	lx.toks = append(lx.toks, Token{Kind: EOF, Pos: lx.pos, End: lx.pos})
	return lx.toks, lx.cmts, err
}

func (lx *lexer) peek(n int) byte {
	if lx.off+n < len(lx.src) {
		return lx.src[lx.off+n]
	}
	return 0
}

func (lx *lexer) advance() byte {
	c := lx.src[lx.off]
	lx.off++
	if c == '\n' {
		lx.pos.Line++
		lx.pos.Col = 1
		lx.bol = true
	} else {
		lx.pos.Col++
	}
	return c
}

func (lx *lexer) run() error {
	for lx.off < len(lx.src) {
		c := lx.peek(0)
		switch {
		case c == '\n':
			lx.advance()
		case isSpace(c):
			lx.advance()
		case c == '\\' && lx.peek(1) == '\n':
			lx.advance()
			lx.advance()
		case c == '#' && lx.bol:
			lx.readDirective()
		case c == '/' && lx.peek(1) == '/':
			lx.readLineComment()
		case c == '/' && lx.peek(1) == '*':
			if err := lx.readBlockComment(); err != nil {
				return err
			}
		default:
			lx.bol = false
			if err := lx.readToken(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (lx *lexer) readDirective() {
	start, startOff := lx.pos, lx.off
	for lx.off < len(lx.src) {
		c := lx.peek(0)
		if c == '\\' && lx.peek(1) == '\n' {
			lx.advance()
			lx.advance()
			continue
		}
		if c == '\n' {
			break
		}
		lx.advance()
	}
	lx.cmts = append(lx.cmts, Comment{Kind: Directive, Text: lx.src[startOff:lx.off], Pos: start, End: lx.pos})
}

func (lx *lexer) readLineComment() {
	start, startOff := lx.pos, lx.off
	for lx.off < len(lx.src) && lx.peek(0) != '\n' {
		lx.advance()
	}
	text := lx.src[startOff:lx.off]
	kind := LineComment
	if strings.HasPrefix(text, "///<") || strings.HasPrefix(text, "//!<") {
		kind = TrailingDocComment
	}
	lx.cmts = append(lx.cmts, Comment{Kind: kind, Text: text, Pos: start, End: lx.pos})
}

func (lx *lexer) readBlockComment() error {
	start, startOff := lx.pos, lx.off
	bol := lx.bol
	lx.advance()
	lx.advance()
	for {
		if lx.off >= len(lx.src) {
			return &LexError{Pos: start, Msg: "unterminated comment"}
		}
		if lx.peek(0) == '*' && lx.peek(1) == '/' {
			lx.advance()
			lx.advance()
			break
		}
		lx.advance()
	}
	// A comment does not end the leading-whitespace run of a line.
	lx.bol = bol && lx.pos.Line == start.Line

	text := lx.src[startOff:lx.off]
	kind := BlockComment
	switch {
	case strings.HasPrefix(text, "/**<"), strings.HasPrefix(text, "/*!<"):
		kind = TrailingDocComment
	case strings.HasPrefix(text, "/***"), text == "/**/":
		// Banner lines and empty comments.
	case strings.HasPrefix(text, "/**"), strings.HasPrefix(text, "/*!"):
		kind = DocComment
	}
	lx.cmts = append(lx.cmts, Comment{Kind: kind, Text: text, Pos: start, End: lx.pos})
	return nil
}

func (lx *lexer) emit(kind TokenKind, startOff int, start Pos) {
	lx.toks = append(lx.toks, Token{
		Kind: kind,
		Val:  lx.src[startOff:lx.off],
		Pos:  start,
		End:  lx.pos,
	})
}

func (lx *lexer) readToken() error {
	start, startOff := lx.pos, lx.off
	c := lx.peek(0)

	switch {
	case isAlpha(c) || c == '_':
		for isAlpha(lx.peek(0)) || isNumeric(lx.peek(0)) || lx.peek(0) == '_' {
			lx.advance()
		}
		// Wide and unicode literal prefixes.
		if q := lx.peek(0); q == '\'' || q == '"' {
			switch lx.src[startOff:lx.off] {
			case "L", "u", "U", "u8":
				return lx.readQuoted(startOff, start)
			}
		}
		lx.emit(IDENT, startOff, start)
		return nil

	case isNumeric(c) || (c == '.' && isNumeric(lx.peek(1))):
		lx.readNumber(startOff, start)
		return nil

	case c == '\'' || c == '"':
		return lx.readQuoted(startOff, start)

	case c == '.' && lx.peek(1) == '.' && lx.peek(2) == '.':
		lx.advance()
		lx.advance()
		lx.advance()
		lx.emit(ELLIPSIS, startOff, start)
		return nil
	}

	if kind, ok := singleCharTokens[c]; ok {
		// '=' may start '=='.
		if !(c == '=' && lx.peek(1) == '=') {
			lx.advance()
			lx.emit(kind, startOff, start)
			return nil
		}
	}

	two := string([]byte{c, lx.peek(1)})
	switch two {
	case "<<":
		lx.advance()
		lx.advance()
		lx.emit(SHL, startOff, start)
		return nil
	case ">>":
		lx.advance()
		lx.advance()
		lx.emit(SHR, startOff, start)
		return nil
	case "->", "++", "--", "&&", "||", "==", "!=", "<=", ">=", "##", "::":
		lx.advance()
		lx.advance()
		lx.emit(OP, startOff, start)
		return nil
	}

	if strings.IndexByte("+-~!&|^/%<>.?#", c) >= 0 {
		lx.advance()
		lx.emit(OP, startOff, start)
		return nil
	}

	lx.advance()
	lx.emit(ILLEGAL, startOff, start)
	return nil
}

func (lx *lexer) readNumber(startOff int, start Pos) {
	kind := INT
	hex := lx.peek(0) == '0' && (lx.peek(1) == 'x' || lx.peek(1) == 'X')
	for {
		c := lx.peek(0)
		switch {
		case isAlpha(c) || isNumeric(c) || c == '_':
			if !hex && (c == 'e' || c == 'E') {
				kind = FLOAT
			}
			if hex && (c == 'p' || c == 'P') {
				kind = FLOAT
			}
			lx.advance()
			if (c == 'e' || c == 'E' || c == 'p' || c == 'P') && kind == FLOAT {
				if s := lx.peek(0); s == '+' || s == '-' {
					lx.advance()
				}
			}
		case c == '.':
			kind = FLOAT
			lx.advance()
		default:
			lx.emit(kind, startOff, start)
			return
		}
	}
}

func (lx *lexer) readQuoted(startOff int, start Pos) error {
	quote := lx.advance()
	kind := CHAR
	if quote == '"' {
		kind = STRING
	}
	for {
		if lx.off >= len(lx.src) || lx.peek(0) == '\n' {
			return &LexError{Pos: start, Msg: "unterminated " + kind.String()}
		}
		c := lx.advance()
		if c == '\\' {
			if lx.off < len(lx.src) {
				lx.advance()
			}
			continue
		}
		if c == quote {
			break
		}
	}
	lx.emit(kind, startOff, start)
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNumeric(c byte) bool {
	return c >= '0' && c <= '9'
}
