package capir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

const sampleConfig = `source: include/vlc/libvlc.h
prefix: libvlc_
exclude:
  - libvlc_printerr
public_macros: [LIBVLC_API]
deprecated_macros: [LIBVLC_DEPRECATED]
require_docs: true
workers: 4
format: yaml
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Source:           "include/vlc/libvlc.h",
		Prefix:           "libvlc_",
		Exclude:          []string{"libvlc_printerr"},
		PublicMacros:     []string{"LIBVLC_API"},
		DeprecatedMacros: []string{"LIBVLC_DEPRECATED"},
		RequireDocs:      true,
		Workers:          4,
		Format:           "yaml",
	}, cfg)
	assert.Empty(t, cfg.Validate())
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("prefix: libvlc_\nprefx: typo\n"))
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "libvlc_", cfg.Prefix)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfig_Set(t *testing.T) {
	cfg := &Config{Prefix: "libvlc_", Workers: 2, Format: "yaml"}
	err := cfg.Set(
		"workers=8",
		"exclude=libvlc_a",
		"exclude=libvlc_b",
		"strict=true",
	)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"libvlc_a", "libvlc_b"}, cfg.Exclude)
	assert.True(t, cfg.Strict)
	// Untouched settings keep their value.
	assert.Equal(t, "libvlc_", cfg.Prefix)
	assert.Equal(t, "yaml", cfg.Format)

	assert.Error(t, cfg.Set("workers"))
	assert.Error(t, cfg.Set("=1"))
	assert.Error(t, cfg.Set("no_such_key=1"))
	assert.Error(t, cfg.Set("workers=many"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		fields []string
	}{
		{"valid", Config{Prefix: "libvlc_"}, nil},
		{"missing prefix", Config{}, []string{"prefix"}},
		{"bad prefix", Config{Prefix: "lib-vlc"}, []string{"prefix"}},
		{"bad exclude", Config{Prefix: "libvlc_", Exclude: []string{"libvlc_ok", "not ok"}}, []string{"exclude[1]"}},
		{"negative workers", Config{Prefix: "libvlc_", Workers: -1}, []string{"workers"}},
		{"unknown format", Config{Prefix: "libvlc_", Format: "xml"}, []string{"format"}},
		{
			"several",
			Config{Format: "xml", Workers: 1000, VersionMacroPrefix: "1X"},
			[]string{"prefix", "version_macro_prefix", "workers", "format"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields []string
			for _, err := range tt.cfg.Validate() {
				var ce *ConfigError
				require.True(t, errors.As(err, &ce), "%T", err)
				fields = append(fields, ce.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestConfig_ValidateMessage(t *testing.T) {
	errs := (&Config{Prefix: "libvlc_", Format: "xml"}).Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "format: must be one of: json yaml pp c", errs[0].Error())
}

func TestApplyConfigDefaults(t *testing.T) {
	in := &Config{Prefix: "libvlc_"}
	out := applyConfigDefaults(in)

	assert.Equal(t, "<input>", out.Source)
	assert.Equal(t, "LIBVLC_", out.VersionMacroPrefix)
	assert.Equal(t, 1, out.Workers)
	assert.Equal(t, "json", out.Format)
	// The input is not mutated.
	assert.Equal(t, &Config{Prefix: "libvlc_"}, in)
}
