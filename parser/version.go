package parser

import (
	"regexp"
	"strings"
)

var versionDefineRe = regexp.MustCompile(`^#\s*define\s+(\w*)VERSION_(MAJOR|MINOR|REVISION|EXTRA)\s+\(*\s*(\d+)\s*\)*`)

// ScanVersion returns the library version defined by the
// <prefix>VERSION_MAJOR, _MINOR, _REVISION and _EXTRA macros of src as
// "major.minor.revision[.extra]". EXTRA is omitted when zero.
func ScanVersion(src, macroPrefix string) (string, bool) {
	_, cmts, _ := Lex(src)
	return scanVersion(cmts, macroPrefix)
}

func scanVersion(cmts []Comment, macroPrefix string) (string, bool) {
	parts := make(map[string]string, 4)
	for _, c := range cmts {
		if c.Kind != Directive {
			continue
		}
		m := versionDefineRe.FindStringSubmatch(c.Text)
		if m == nil || m[1] != macroPrefix {
			continue
		}
		parts[m[2]] = m[3]
	}

	major, ok1 := parts["MAJOR"]
	minor, ok2 := parts["MINOR"]
	revision, ok3 := parts["REVISION"]
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	v := []string{major, minor, revision}
	if extra := parts["EXTRA"]; extra != "" && strings.TrimLeft(extra, "0") != "" {
		v = append(v, extra)
	}
	return strings.Join(v, "."), true
}
