// Package corpus provides the fixture headers shared by tests across the
// module. The headers are stored in a single txtar archive.
package corpus

import (
	_ "embed"
	"sort"

	"golang.org/x/tools/txtar"
)

//go:embed testdata/corpus.txtar
var archive []byte

var files = parse()

func parse() map[string]string {
	ar := txtar.Parse(archive)
	m := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		m[f.Name] = string(f.Data)
	}
	return m
}

// Header returns the named fixture header. It panics if the name is unknown.
func Header(name string) string {
	src, ok := files[name]
	if !ok {
		panic("corpus: unknown header " + name)
	}
	return src
}

// Names returns the fixture names in sorted order.
func Names() []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Comment returns the archive comment describing the corpus.
func Comment() string {
	return string(txtar.Parse(archive).Comment)
}
