package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the file searched for by FindSettings.
const SettingsFileName = "sumcheck.yaml"

// Settings represents the top-level sumcheck.yaml configuration.
type Settings struct {
	Limits Limits `yaml:"limits"`
	Policy Policy `yaml:"policy"`
	Output Output `yaml:"output"`

	// Catalog is the path of the SQLite descriptor catalog.
	// Relative paths are resolved against the settings file directory.
	// Empty disables the catalog.
	Catalog string `yaml:"catalog,omitempty"`
}

// Limits bounds the shapes the type former accepts.
type Limits struct {
	// MaxSlots is the largest slot count of a single anonymous sum.
	MaxSlots int `yaml:"max_slots,omitempty"`
}

// Policy holds the explicit decisions for questions the language
// design leaves open.
type Policy struct {
	// DegenerateSums is "reject" or "allow" for zero- and one-slot sums.
	DegenerateSums string `yaml:"degenerate_sums,omitempty"`

	// Ordering is "none" or "tag-then-payload". With "none",
	// PartialOrd and Ord are never derived for anonymous sums.
	Ordering string `yaml:"ordering,omitempty"`
}

// Output controls diagnostic rendering in the CLI.
type Output struct {
	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`
}

// DefaultSettings returns the settings used when no sumcheck.yaml exists.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads and parses a sumcheck.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	s, err := ParseSettings(data, path)
	if err != nil {
		return nil, err
	}
	if s.Catalog != "" && !filepath.IsAbs(s.Catalog) {
		s.Catalog = filepath.Join(filepath.Dir(path), s.Catalog)
	}
	return s, nil
}

// ParseSettings parses sumcheck.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.setDefaults()
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSettings searches for sumcheck.yaml starting from dir and walking up
// to parent directories.
// Returns the path and nil error if found, or empty string and nil error if not.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		candidate = filepath.Join(dir, "sumcheck.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (s *Settings) setDefaults() {
	if s.Limits.MaxSlots == 0 {
		s.Limits.MaxSlots = DefaultMaxSlots
	}
	if s.Policy.DegenerateSums == "" {
		s.Policy.DegenerateSums = DegenerateReject
	}
	if s.Policy.Ordering == "" {
		s.Policy.Ordering = OrderingNone
	}
	if s.Output.Color == "" {
		s.Output.Color = ColorAuto
	}
}

// validate checks the configuration for semantic errors.
func (s *Settings) validate(path string) error {
	if s.Limits.MaxSlots < 0 {
		return fmt.Errorf("%s: limits.max_slots must not be negative, got %d", path, s.Limits.MaxSlots)
	}

	switch s.Policy.DegenerateSums {
	case DegenerateReject, DegenerateAllow:
	default:
		return fmt.Errorf("%s: policy.degenerate_sums must be %q or %q, got %q",
			path, DegenerateReject, DegenerateAllow, s.Policy.DegenerateSums)
	}

	switch s.Policy.Ordering {
	case OrderingNone, OrderingTagThenPayload:
	default:
		return fmt.Errorf("%s: policy.ordering must be %q or %q, got %q",
			path, OrderingNone, OrderingTagThenPayload, s.Policy.Ordering)
	}

	switch s.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: output.color must be one of auto, always, never; got %q", path, s.Output.Color)
	}
	return nil
}
