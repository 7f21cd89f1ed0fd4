package main

import (
	_ "embed"
	"fmt"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// buildVersion identifies the capir binary.
type buildVersion struct {
	Version   string // release tag, or the VERSION file for source builds
	Release   bool
	Revision  string // short VCS revision, source builds only
	Modified  bool
	GoVersion string
}

func readBuildVersion() buildVersion {
	info, _ := debug.ReadBuildInfo()
	return newBuildVersion(embeddedVersion, info)
}

func newBuildVersion(base string, info *debug.BuildInfo) buildVersion {
	v := buildVersion{Version: strings.TrimSpace(base)}
	if info == nil {
		return v
	}
	v.GoVersion = info.GoVersion
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		v.Version = mv
		v.Release = true
		return v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Revision = s.Value[:min(len(s.Value), 7)]
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	return v
}

// String formats source builds as semver build metadata, e.g.
// "0.1.0-devel+abc1234.dirty".
func (v buildVersion) String() string {
	if v.Release {
		return v.Version
	}
	s := v.Version + "-devel"
	if v.Revision != "" {
		s += "+" + v.Revision
		if v.Modified {
			s += ".dirty"
		}
	}
	return s
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	v := readBuildVersion()
	if v.GoVersion == "" {
		fmt.Println("capir", v)
		return nil
	}
	fmt.Printf("capir %s (%s)\n", v, v.GoVersion)
	return nil
}
