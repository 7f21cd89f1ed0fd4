package parser

import (
	"strings"

	"github.com/broady/capir/ir"
)

// Filter decides which resolved declarations belong to the public surface.
type Filter struct {
	// Prefix every included name must start with.
	Prefix string

	// Exclude lists names that are never included.
	Exclude map[string]bool

	// IgnoreVisibility admits functions without the public marker.
	IgnoreVisibility bool
}

// NewFilter returns a Filter for prefix with the given exclusions.
func NewFilter(prefix string, exclude []string, ignoreVisibility bool) Filter {
	f := Filter{Prefix: prefix, Exclude: make(map[string]bool, len(exclude)), IgnoreVisibility: ignoreVisibility}
	for _, name := range exclude {
		f.Exclude[name] = true
	}
	return f
}

// Named reports whether name passes the prefix and exclusion checks.
func (f Filter) Named(name string) bool {
	return name != "" && strings.HasPrefix(name, f.Prefix) && !f.Exclude[name]
}

// Allow reports whether d is included. Functions must also carry the
// public marker unless visibility is ignored. A public function outside
// the prefix is excluded.
func (f Filter) Allow(d ir.Declaration) bool {
	if !f.Named(d.DeclName()) {
		return false
	}
	if fn, ok := d.(*ir.FunctionDecl); ok && !f.IgnoreVisibility {
		return fn.Public
	}
	return true
}
