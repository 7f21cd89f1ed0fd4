package parser

import "fmt"

// TokenKind is the lexical class of a token.
type TokenKind int

// The list of tokens.
const (
	EOF TokenKind = iota
	ILLEGAL

	IDENT  // libvlc_media_t, const, struct
	INT    // 42, 0x1f, 'r' is CHAR
	FLOAT  // 1.5, 1e3
	CHAR   // 'a'
	STRING // "default"

	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACK    // [
	RBRACK    // ]
	SEMICOLON // ;
	COMMA     // ,
	STAR      // *
	ASSIGN    // =
	COLON     // :
	ELLIPSIS  // ...
	SHL       // <<
	SHR       // >>
	OP        // any other operator, see Val
)

var tokenKindToStr = [...]string{
	EOF:       "EOF",
	ILLEGAL:   "illegal",
	IDENT:     "ident",
	INT:       "intconst",
	FLOAT:     "floatconst",
	CHAR:      "charconst",
	STRING:    "string",
	LPAREN:    "'('",
	RPAREN:    "')'",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	LBRACK:    "'['",
	RBRACK:    "']'",
	SEMICOLON: "';'",
	COMMA:     "','",
	STAR:      "'*'",
	ASSIGN:    "'='",
	COLON:     "':'",
	ELLIPSIS:  "'...'",
	SHL:       "'<<'",
	SHR:       "'>>'",
	OP:        "operator",
}

func (tk TokenKind) String() string {
	if int(tk) < 0 || int(tk) >= len(tokenKindToStr) {
		return "Unknown"
	}
	return tokenKindToStr[tk]
}

// Pos is a 1-based line and column.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p is strictly before q.
func (p Pos) Before(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Attrs are the markers recorded when attributes are stripped.
type Attrs uint8

const (
	AttrPublic Attrs = 1 << iota
	AttrDeprecated
)

// Has reports whether all bits of a are set.
func (at Attrs) Has(a Attrs) bool {
	return at&a == a
}

// Token represents a grouping of characters that provide semantic meaning
// in a C header.
type Token struct {
	Kind TokenKind
	Val  string

	// Pos is the position of the first character, End the position just
	// after the last one.
	Pos Pos
	End Pos

	// Attrs are the markers of attributes stripped next to this token.
	Attrs Attrs
}

func (t Token) String() string {
	return fmt.Sprintf("%s at %s", t.Val, t.Pos)
}

// Is reports whether t is the identifier or punctuation spelled val.
func (t Token) Is(val string) bool {
	return t.Val == val && t.Kind != STRING && t.Kind != CHAR
}

var singleCharTokens = map[byte]TokenKind{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACK,
	']': RBRACK,
	';': SEMICOLON,
	',': COMMA,
	'*': STAR,
	'=': ASSIGN,
	':': COLON,
}

// builtinSpecifiers are the keywords that combine into primitive types.
var builtinSpecifiers = map[string]bool{
	"void":     true,
	"char":     true,
	"short":    true,
	"int":      true,
	"long":     true,
	"float":    true,
	"double":   true,
	"signed":   true,
	"unsigned": true,
	"_Bool":    true,
	"_Complex": true,
}

// builtinTypedefs are standard library typedef names treated as primitives.
var builtinTypedefs = map[string]bool{
	"bool":              true,
	"size_t":            true,
	"ssize_t":           true,
	"ptrdiff_t":         true,
	"intptr_t":          true,
	"uintptr_t":         true,
	"wchar_t":           true,
	"int8_t":            true,
	"int16_t":           true,
	"int32_t":           true,
	"int64_t":           true,
	"uint8_t":           true,
	"uint16_t":          true,
	"uint32_t":          true,
	"uint64_t":          true,
	"off_t":             true,
	"va_list":           true,
	"__builtin_va_list": true,
}

var tagKeywords = map[string]bool{
	"struct": true,
	"union":  true,
	"enum":   true,
}

var qualifiers = map[string]bool{
	"const":    true,
	"volatile": true,
}

var storageClasses = map[string]bool{
	"extern":   true,
	"static":   true,
	"inline":   true,
	"register": true,
}
