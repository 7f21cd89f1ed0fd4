package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/capir/ir"
)

func foldString(t *testing.T, expr string, env map[string]int64) (int64, error) {
	t.Helper()
	toks, _, err := Lex(expr)
	require.NoError(t, err)
	return fold(toks[:len(toks)-1], env)
}

func TestFold(t *testing.T) {
	env := map[string]int64{"A": 3, "B": 0x10}
	tests := []struct {
		expr string
		want int64
	}{
		{"42", 42},
		{"0x1f", 31},
		{"0XFFu", 255},
		{"017", 15},
		{"0b101", 5},
		{"10UL", 10},
		{"0", 0},
		{"'r' << 16", 0x720000},
		{"'g' << 16", 0x670000},
		{`'\n'`, 10},
		{`'\0'`, 0},
		{`'\x41'`, 65},
		{`'\''`, 39},
		{"'RV32'", 0x52563332},
		{"-1", -1},
		{"~0", -1},
		{"+7", 7},
		{"1 << 4 | 1", 17},
		{"1 | 2 & 3", 3},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"17 / 5", 3},
		{"17 % 5", 2},
		{"6 ^ 3", 5},
		{"A + 1", 4},
		{"B >> 2", 4},
		{"-(A)", -3},
		{"0xFFFFFFFFFFFFFFFF", -1},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := foldString(t, tt.expr, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFold_Unresolved(t *testing.T) {
	for _, expr := range []string{
		"",
		"UNKNOWN",
		"sizeof(int)",
		"1 +",
		"(1",
		"1 / 0",
		"1 % 0",
		"1 << 64",
		"1.5",
		`"str"`,
		"1 == 1",
		"0x",
		"'ab",
	} {
		t.Run(expr, func(t *testing.T) {
			toks, _, _ := Lex(expr)
			_, err := fold(toks[:len(toks)-1], nil)
			var pe *parseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ir.UnresolvedExpression, pe.kind)
		})
	}
}

func TestLiteral(t *testing.T) {
	lex := func(s string) []Token {
		toks, _, _ := Lex(s)
		return toks[:len(toks)-1]
	}
	assert.Equal(t, "0x1", literal(lex("0x1"), 1))
	assert.Equal(t, "0xf", literal(lex("0xF"), 15))
	assert.Equal(t, "0x3", literal(lex("0x1 | 0x2"), 3))
	assert.Equal(t, "7471104", literal(lex("'r' << 16"), 7471104))
	assert.Equal(t, "-5", literal(lex("-5"), -5))
	assert.Equal(t, "8", literal(lex("010"), 8))
}
