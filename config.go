package capir

import (
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/broady/capir/emit"
	"github.com/broady/capir/parser"
)

var (
	validate        = validator.New()
	settingsDecoder = schema.NewDecoder()
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	// Report fields by their yaml names, the names users type.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("cident", func(fl validator.FieldLevel) bool {
		return identRe.MatchString(fl.Field().String())
	})
}

// Config holds the configuration for one extraction run. It can be loaded
// from YAML, overridden with key=value settings and validated.
type Config struct {
	// Source is the path of the header to parse.
	// Used in spans and to derive the output file name.
	Source string `yaml:"source" schema:"source"`

	// Prefix is the identifier prefix of the API surface, e.g. "libvlc_".
	// Only declarations whose name starts with it are extracted.
	Prefix string `yaml:"prefix" schema:"prefix" validate:"required,cident"`

	// Exclude lists declaration names to drop even when they match Prefix.
	Exclude []string `yaml:"exclude" schema:"exclude" validate:"dive,cident"`

	// IgnoreVisibility keeps functions without the public marker.
	IgnoreVisibility bool `yaml:"ignore_visibility" schema:"ignore_visibility"`

	// PublicMacros are macro names that mark a function as public,
	// e.g. "LIBVLC_API" when the header was not macro-expanded.
	PublicMacros []string `yaml:"public_macros" schema:"public_macros" validate:"dive,cident"`

	// DeprecatedMacros are macro names that mark a declaration deprecated.
	DeprecatedMacros []string `yaml:"deprecated_macros" schema:"deprecated_macros" validate:"dive,cident"`

	// RequireDocs reports undocumented declarations as warnings.
	RequireDocs bool `yaml:"require_docs" schema:"require_docs"`

	// VersionMacroPrefix selects the <P>VERSION_MAJOR family of macros.
	// Default: Prefix upper-cased.
	VersionMacroPrefix string `yaml:"version_macro_prefix" schema:"version_macro_prefix" validate:"omitempty,cident"`

	// Workers is the number of goroutines resolving declarations.
	// Default: 1
	Workers int `yaml:"workers" schema:"workers" validate:"gte=0,lte=256"`

	// Format is the output encoding: "json" (default), "yaml", "pp" or "c".
	Format string `yaml:"format" schema:"format" validate:"omitempty,oneof=json yaml pp c"`

	// OutDir is where output files are written. Empty or "-" writes to stdout.
	OutDir string `yaml:"out_dir" schema:"out_dir"`

	// Strict makes error diagnostics fail the run.
	Strict bool `yaml:"strict" schema:"strict"`
}

// LoadConfig decodes a YAML configuration. Unknown keys are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// LoadConfigFile reads and decodes the YAML configuration at path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, errors.WithDetails(err, "path", path)
	}
	return cfg, nil
}

// Set applies key=value settings on top of c, using the yaml key names.
// Repeating a key appends to list settings.
func (c *Config) Set(pairs ...string) error {
	if len(pairs) == 0 {
		return nil
	}
	values := make(map[string][]string)
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return errors.Errorf("invalid setting %q: expected key=value", p)
		}
		values[k] = append(values[k], v)
	}

	// Decode into a scratch value so unset fields keep their current value.
	var scratch Config
	if err := settingsDecoder.Decode(&scratch, values); err != nil {
		return errors.Errorf("decode settings: %w", err)
	}
	dst := reflect.ValueOf(c).Elem()
	src := reflect.ValueOf(scratch)
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		if _, ok := values[t.Field(i).Tag.Get("schema")]; ok {
			dst.Field(i).Set(src.Field(i))
		}
	}
	return nil
}

// Validate checks c and returns one error per invalid field.
func (c *Config) Validate() []error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return []error{errors.WithStack(err)}
	}
	errs := make([]error, 0, len(valErrs))
	for _, ve := range valErrs {
		errs = append(errs, &ConfigError{Field: ve.Field(), Message: formatValidationError(ve)})
	}
	return errs
}

// ConfigError describes one invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "cident":
		return "must be a C identifier"
	case "gte":
		return "must be at least " + ve.Param()
	case "lte":
		return "must be at most " + ve.Param()
	case "oneof":
		return "must be one of: " + ve.Param()
	default:
		if ve.Param() != "" {
			return "failed " + ve.Tag() + "=" + ve.Param() + " validation"
		}
		return "failed " + ve.Tag() + " validation"
	}
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Source == "" {
		result.Source = "<input>"
	}
	if result.VersionMacroPrefix == "" {
		result.VersionMacroPrefix = strings.ToUpper(result.Prefix)
	}
	if result.Workers == 0 {
		result.Workers = 1
	}
	if result.Format == "" {
		result.Format = string(emit.FormatJSON)
	}

	return &result
}

// parserOptions maps a defaulted Config onto parser.Options.
func (c *Config) parserOptions() parser.Options {
	return parser.Options{
		File:               c.Source,
		Prefix:             c.Prefix,
		Exclude:            c.Exclude,
		IgnoreVisibility:   c.IgnoreVisibility,
		PublicMacros:       c.PublicMacros,
		DeprecatedMacros:   c.DeprecatedMacros,
		RequireDocs:        c.RequireDocs,
		VersionMacroPrefix: c.VersionMacroPrefix,
		Workers:            c.Workers,
	}
}
