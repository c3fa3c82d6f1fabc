package assets

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/wolfeidau/figbundle/internal/assets"

// Build runs a complete build: input validation followed by bundle generation.
func (s *Step) Build(ctx context.Context, bc BuildContext, oc OutputContext) error {
	if err := s.OnBuildStart(ctx, bc); err != nil {
		return err
	}
	return s.OnGenerateBundle(ctx, oc)
}

// OnBuildStart checks that the plugin and manifest files are readable and
// registers both for change watching. The plugin file is checked first.
func (s *Step) OnBuildStart(ctx context.Context, bc BuildContext) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "figbundle.build_start")
	defer func() { endSpan(span, err) }()

	inputs := []struct {
		role Role
		path string
	}{
		{RolePlugin, s.config.EntryPath},
		{RoleManifest, s.config.ManifestPath},
	}

	for _, in := range inputs {
		if err := checkReadable(in.path); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("path", in.path).Str("role", string(in.role)).Msg("Missing input file")
			return newBuildError(ErrMissingFile, in.role, in.path, err)
		}
		bc.AddWatchFile(in.path)
	}

	zerolog.Ctx(ctx).Debug().
		Str("entry", s.config.EntryPath).
		Str("manifest", s.config.ManifestPath).
		Msg("Build inputs validated")

	return nil
}

// OnGenerateBundle compiles the plugin and rewrites the manifest, emitting
// plugin.js and manifest.json into oc. The two branches run concurrently but are
// emitted in order: a plugin failure emits nothing, a manifest failure still
// emits plugin.js.
func (s *Step) OnGenerateBundle(ctx context.Context, oc OutputContext) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "figbundle.generate_bundle",
		trace.WithAttributes(attribute.String("figbundle.output_dir", oc.Dir())))
	defer func() { endSpan(span, err) }()

	var (
		plugin, manifest Asset
		pluginErr        error
		g                errgroup.Group
	)

	// plugin errors take precedence, so only the manifest error goes through the group
	g.Go(func() error {
		plugin, pluginErr = s.compileEntry(ctx)
		return nil
	})
	g.Go(func() (err error) {
		manifest, err = s.rewriteManifest(ctx, oc.Dir())
		return err
	})
	manifestErr := g.Wait()

	if pluginErr != nil {
		zerolog.Ctx(ctx).Error().Err(pluginErr).Msg("Plugin compile failed")
		return pluginErr
	}
	if err := oc.EmitFile(plugin); err != nil {
		return err
	}

	if manifestErr != nil {
		zerolog.Ctx(ctx).Error().Err(manifestErr).Msg("Manifest rewrite failed")
		return manifestErr
	}
	return oc.EmitFile(manifest)
}

// compileEntry reads the plugin source and runs it through the transformer with
// minify and tree shaking enabled unless the caller turned them off.
func (s *Step) compileEntry(ctx context.Context) (Asset, error) {
	path := s.config.EntryPath

	source, err := os.ReadFile(path) // #nosec G304 - path from build configuration
	if err != nil {
		return Asset{}, newBuildError(ErrFileRead, RolePlugin, path, err)
	}

	opts := MergeTransformOptions(DefaultTransformOptions(), s.config.TransformOptions)

	code, err := s.transformer.Transform(ctx, string(source), path, opts)
	if err != nil {
		return Asset{}, newBuildError(ErrTransform, RolePlugin, path, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("file", path).
		Bool("minify", *opts.Minify).
		Bool("tree_shaking", *opts.TreeShaking).
		Int("bytes", len(code)).
		Msg("Compiled plugin")

	return Asset{
		Name:     path,
		FileName: PluginFileName,
		Type:     AssetType,
		Source:   code,
	}, nil
}

func (s *Step) rewriteManifest(ctx context.Context, outputDir string) (Asset, error) {
	data, err := s.readManifest(outputDir)
	if err != nil {
		return Asset{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("file", s.config.ManifestPath).
		Str("output_dir", outputDir).
		Msg("Rewrote manifest")

	return Asset{
		Name:     s.config.ManifestPath,
		FileName: ManifestFileName,
		Type:     AssetType,
		Source:   string(data),
	}, nil
}

func checkReadable(path string) error {
	f, err := os.Open(path) // #nosec G304 - path from build configuration
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
