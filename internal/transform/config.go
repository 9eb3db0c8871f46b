package transform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rowanvale/sigbridge/internal/synth"
)

// Options are the transformer run defaults. All fields are optional in the
// config file; zero values fall back to DefaultOptions.
type Options struct {
	// MaxNameLen bounds generated alarm names, truncation suffix included.
	MaxNameLen int `yaml:"max_name_len"`
	// Version is the minVersion stamped on generated alarms when the rule
	// document does not declare its own.
	Version string `yaml:"version"`
	// DefaultPrefix is the match-value prefix for rules whose identifier
	// carries no prefix of its own.
	DefaultPrefix string `yaml:"default_prefix"`
	// ReportPrefix is the base name of the CSV/HTML report pair.
	ReportPrefix string `yaml:"report_prefix"`
}

// DefaultOptions returns the built-in transformer defaults.
func DefaultOptions() Options {
	return Options{
		MaxNameLen:    128,
		Version:       synth.DefaultMinVersion,
		DefaultPrefix: "47",
		ReportPrefix:  "report",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxNameLen <= 0 {
		o.MaxNameLen = def.MaxNameLen
	}
	if o.Version == "" {
		o.Version = def.Version
	}
	if o.DefaultPrefix == "" {
		o.DefaultPrefix = def.DefaultPrefix
	}
	if o.ReportPrefix == "" {
		o.ReportPrefix = def.ReportPrefix
	}
	return o
}

// LoadOptions reads a YAML options file and overlays it on DefaultOptions.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	return opts.withDefaults(), nil
}
