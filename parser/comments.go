package parser

import (
	"sort"
	"strings"

	"github.com/broady/capir/ir"
)

// docIndex associates documentation comments with token positions.
// It is read-only after construction and safe for concurrent use.
type docIndex struct {
	toks []Token
	cmts []Comment
}

func newDocIndex(toks []Token, cmts []Comment) *docIndex {
	return &docIndex{toks: toks, cmts: cmts}
}

// leading returns the documentation of the entity starting at token i: the
// nearest preceding doc comment with nothing but whitespace and plain
// comments between it and the token.
func (ix *docIndex) leading(i int) ir.Documentation {
	if i < 0 || i >= len(ix.toks) {
		return ir.Documentation{}
	}
	start := ix.toks[i].Pos
	var prevEnd Pos
	if i > 0 {
		prevEnd = ix.toks[i-1].End
	}

	// First comment at or after start.
	n := sort.Search(len(ix.cmts), func(k int) bool {
		return !ix.cmts[k].Pos.Before(start)
	})
	for k := n - 1; k >= 0; k-- {
		c := ix.cmts[k]
		if c.Pos.Before(prevEnd) {
			break
		}
		switch c.Kind {
		case DocComment:
			return ir.Documentation{Lines: docLines(c.Text)}
		case LineComment, BlockComment:
			continue
		}
		break
	}
	return ir.Documentation{}
}

// trailing returns a `/**<` comment placed after token last and before
// token next.
func (ix *docIndex) trailing(last, next int) ir.Documentation {
	if last < 0 || next >= len(ix.toks) || last >= next {
		return ir.Documentation{}
	}
	from, to := ix.toks[last].End, ix.toks[next].Pos
	n := sort.Search(len(ix.cmts), func(k int) bool {
		return !ix.cmts[k].Pos.Before(from)
	})
	for k := n; k < len(ix.cmts) && ix.cmts[k].Pos.Before(to); k++ {
		if ix.cmts[k].Kind == TrailingDocComment {
			return ir.Documentation{Lines: docLines(ix.cmts[k].Text)}
		}
	}
	return ir.Documentation{}
}

// docLines strips comment markers and the leading `*` margin from a doc
// comment. Leading and trailing blank lines are dropped.
func docLines(text string) []string {
	switch {
	case strings.HasPrefix(text, "/**<"), strings.HasPrefix(text, "/*!<"),
		strings.HasPrefix(text, "///<"), strings.HasPrefix(text, "//!<"):
		text = text[4:]
	case strings.HasPrefix(text, "/**"), strings.HasPrefix(text, "/*!"):
		text = text[3:]
	}
	text = strings.TrimSuffix(text, "*/")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimLeft(line, " \t")
		if strings.HasPrefix(line, "*") {
			line = strings.TrimPrefix(line[1:], " ")
		}
		lines = append(lines, strings.TrimRight(line, " \t\r"))
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}
