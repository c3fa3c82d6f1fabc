package assets

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEntryPath is the plugin source compiled into plugin.js
	DefaultEntryPath = "src/plugin.ts"
	// DefaultManifestPath is the manifest describing the plugin
	DefaultManifestPath = "manifest.json"
)

type Config struct {
	// Path to the plugin source file (e.g., "src/plugin.ts")
	EntryPath string `yaml:"entryPath" json:"entryPath"`
	// Path to the manifest.json that describes the plugin
	ManifestPath string `yaml:"manifestPath" json:"manifestPath"`
	// Options handed to the transform engine, merged over the minify and tree shaking defaults
	TransformOptions TransformOptions `yaml:"transformOptions" json:"transformOptions"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		EntryPath:    DefaultEntryPath,
		ManifestPath: DefaultManifestPath,
	}
}

// TransformOptions mirrors the subset of esbuild transform flags exposed to callers.
// Nil pointers and empty values mean "unspecified" so a caller can override a
// single default without restating the others.
type TransformOptions struct {
	Minify        *bool             `yaml:"minify" json:"minify,omitempty"`
	TreeShaking   *bool             `yaml:"treeShaking" json:"treeShaking,omitempty"`
	KeepNames     *bool             `yaml:"keepNames" json:"keepNames,omitempty"`
	Target        string            `yaml:"target" json:"target,omitempty"`
	Format        string            `yaml:"format" json:"format,omitempty"`
	Platform      string            `yaml:"platform" json:"platform,omitempty"`
	Charset       string            `yaml:"charset" json:"charset,omitempty"`
	LegalComments string            `yaml:"legalComments" json:"legalComments,omitempty"`
	Sourcemap     string            `yaml:"sourcemap" json:"sourcemap,omitempty"`
	Banner        string            `yaml:"banner" json:"banner,omitempty"`
	Footer        string            `yaml:"footer" json:"footer,omitempty"`
	JSXFactory    string            `yaml:"jsxFactory" json:"jsxFactory,omitempty"`
	JSXFragment   string            `yaml:"jsxFragment" json:"jsxFragment,omitempty"`
	TsconfigRaw   string            `yaml:"tsconfigRaw" json:"tsconfigRaw,omitempty"`
	Define        map[string]string `yaml:"define" json:"define,omitempty"`
	Drop          []string          `yaml:"drop" json:"drop,omitempty"`
	Pure          []string          `yaml:"pure" json:"pure,omitempty"`
}

// DefaultTransformOptions returns the options every compile starts from.
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{
		Minify:      Bool(true),
		TreeShaking: Bool(true),
	}
}

// MergeTransformOptions overlays override onto base field by field. Fields left
// unspecified in override keep the base value.
func MergeTransformOptions(base, override TransformOptions) TransformOptions {
	merged := base
	merged.Define = maps.Clone(base.Define)
	merged.Drop = cloneStrings(base.Drop)
	merged.Pure = cloneStrings(base.Pure)

	if override.Minify != nil {
		merged.Minify = Bool(*override.Minify)
	}
	if override.TreeShaking != nil {
		merged.TreeShaking = Bool(*override.TreeShaking)
	}
	if override.KeepNames != nil {
		merged.KeepNames = Bool(*override.KeepNames)
	}

	merged.Target = pick(override.Target, base.Target)
	merged.Format = pick(override.Format, base.Format)
	merged.Platform = pick(override.Platform, base.Platform)
	merged.Charset = pick(override.Charset, base.Charset)
	merged.LegalComments = pick(override.LegalComments, base.LegalComments)
	merged.Sourcemap = pick(override.Sourcemap, base.Sourcemap)
	merged.Banner = pick(override.Banner, base.Banner)
	merged.Footer = pick(override.Footer, base.Footer)
	merged.JSXFactory = pick(override.JSXFactory, base.JSXFactory)
	merged.JSXFragment = pick(override.JSXFragment, base.JSXFragment)
	merged.TsconfigRaw = pick(override.TsconfigRaw, base.TsconfigRaw)

	if override.Define != nil {
		merged.Define = maps.Clone(override.Define)
	}
	if override.Drop != nil {
		merged.Drop = cloneStrings(override.Drop)
	}
	if override.Pure != nil {
		merged.Pure = cloneStrings(override.Pure)
	}

	return merged
}

// Bool returns a pointer to b, for populating optional flags.
func Bool(b bool) *bool {
	return &b
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

func pick(override, base string) string {
	if override != "" {
		return override
	}
	return base
}

// LoadConfigFile reads a YAML or JSON config file and overlays it on the defaults.
// Keys absent from the file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path supplied by the operator
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	// yaml.v3 parses JSON too, since JSON is a subset of YAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if cfg.EntryPath == "" {
		cfg.EntryPath = DefaultEntryPath
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifestPath
	}

	return cfg, nil
}
