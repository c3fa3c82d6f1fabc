package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/figbundle/internal/assets"
	"github.com/wolfeidau/figbundle/internal/host"
	"github.com/wolfeidau/figbundle/internal/telemetry"
)

type Globals struct {
	Debug   bool
	Version string
}

// BuildFlags are shared by the build and watch commands. Flags left empty fall
// back to the config file, then to the built-in defaults.
type BuildFlags struct {
	Config   string `help:"YAML/JSON config file path" env:"FIGBUNDLE_CONFIG"`
	Entry    string `help:"plugin source file (default src/plugin.ts)" env:"FIGBUNDLE_ENTRY"`
	Manifest string `help:"plugin manifest file (default manifest.json)" env:"FIGBUNDLE_MANIFEST"`
	OutDir   string `help:"output directory" default:"dist" env:"FIGBUNDLE_OUT_DIR"`
	Root     string `help:"project root that relative paths are resolved against" default:"." env:"FIGBUNDLE_ROOT"`

	// Transform overrides
	NoMinify      bool              `help:"disable minification" env:"FIGBUNDLE_NO_MINIFY"`
	NoTreeShaking bool              `help:"disable tree shaking" env:"FIGBUNDLE_NO_TREE_SHAKING"`
	Target        string            `help:"language target, e.g. es2017" env:"FIGBUNDLE_TARGET"`
	Format        string            `help:"output format: iife, cjs or esm" env:"FIGBUNDLE_FORMAT"`
	Define        map[string]string `help:"replace global identifiers with constant expressions"`
	Drop          []string          `help:"drop console and/or debugger statements"`

	Tracing bool `help:"export traces and metrics over OTLP" default:"false" env:"FIGBUNDLE_TRACING"`
}

// Resolve merges the config file and flags into the step configuration, with
// paths resolved against the project root.
func (f *BuildFlags) Resolve() (assets.Config, string, error) {
	cfg := assets.DefaultConfig()
	if f.Config != "" {
		var err error
		if cfg, err = assets.LoadConfigFile(f.Config); err != nil {
			return assets.Config{}, "", err
		}
	}

	if f.Entry != "" {
		cfg.EntryPath = f.Entry
	}
	if f.Manifest != "" {
		cfg.ManifestPath = f.Manifest
	}

	override := assets.TransformOptions{
		Target: f.Target,
		Format: f.Format,
	}
	if len(f.Define) > 0 {
		override.Define = f.Define
	}
	if len(f.Drop) > 0 {
		override.Drop = f.Drop
	}
	if f.NoMinify {
		override.Minify = assets.Bool(false)
	}
	if f.NoTreeShaking {
		override.TreeShaking = assets.Bool(false)
	}
	cfg.TransformOptions = assets.MergeTransformOptions(cfg.TransformOptions, override)

	root, err := filepath.Abs(f.Root)
	if err != nil {
		return assets.Config{}, "", fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg.EntryPath = under(root, cfg.EntryPath)
	cfg.ManifestPath = under(root, cfg.ManifestPath)

	return cfg, root, nil
}

// OutputDir returns the output directory resolved against root
func (f *BuildFlags) OutputDir(root string) string {
	return under(root, f.OutDir)
}

func (f *BuildFlags) newRunner(log zerolog.Logger) (*host.Runner, error) {
	cfg, root, err := f.Resolve()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("entry", cfg.EntryPath).
		Str("manifest", cfg.ManifestPath).
		Str("out_dir", f.OutputDir(root)).
		Msg("Resolved build configuration")

	step := assets.New(cfg, assets.WithRoot(root))
	return host.NewRunner(step, f.OutputDir(root), log, nil), nil
}

// setupTelemetry starts OTLP export when tracing is enabled and returns the
// function flushing it on exit.
func (f *BuildFlags) setupTelemetry(ctx context.Context, log zerolog.Logger, version string) func() {
	if !f.Tracing {
		return func() {}
	}

	log.Info().Msg("Tracing is enabled")
	shutdown, err := telemetry.InitTelemetry(ctx, "figbundle", version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

func under(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
