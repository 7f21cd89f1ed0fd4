// Package input holds the flags shared by commands that read a header.
package input

import (
	"github.com/broady/capir"
)

// Flags selects the header and how it is parsed. Flags override values
// from the config file; --set overrides both.
type Flags struct {
	Header           string   `arg:"" optional:"" help:"Header file to parse (default: source from --config)." type:"existingfile"`
	Config           string   `help:"YAML configuration file." short:"c" type:"existingfile"`
	Set              []string `help:"Override a config setting (key=value, repeatable)." placeholder:"KEY=VALUE"`
	Prefix           string   `help:"Identifier prefix of the API surface (e.g. libvlc_)." short:"p"`
	Exclude          []string `help:"Declaration names to drop." short:"x"`
	PublicMacro      []string `help:"Macro names marking public functions." name:"public-macro"`
	DeprecatedMacro  []string `help:"Macro names marking deprecated declarations." name:"deprecated-macro"`
	IgnoreVisibility bool     `help:"Keep functions without the public marker."`
	RequireDocs      bool     `help:"Warn about undocumented declarations."`
	Workers          int      `help:"Goroutines resolving declarations." short:"j"`
}

// Load builds the run configuration: the config file if any, then flags,
// then --set pairs.
func (f *Flags) Load() (*capir.Config, error) {
	cfg := &capir.Config{}
	if f.Config != "" {
		loaded, err := capir.LoadConfigFile(f.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.Header != "" {
		cfg.Source = f.Header
	}
	if f.Prefix != "" {
		cfg.Prefix = f.Prefix
	}
	cfg.Exclude = append(cfg.Exclude, f.Exclude...)
	cfg.PublicMacros = append(cfg.PublicMacros, f.PublicMacro...)
	cfg.DeprecatedMacros = append(cfg.DeprecatedMacros, f.DeprecatedMacro...)
	if f.IgnoreVisibility {
		cfg.IgnoreVisibility = true
	}
	if f.RequireDocs {
		cfg.RequireDocs = true
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}

	if err := cfg.Set(f.Set...); err != nil {
		return nil, err
	}
	return cfg, nil
}
