package host

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/figbundle/internal/assets"
	"github.com/wolfeidau/figbundle/internal/logger"
	"github.com/wolfeidau/figbundle/internal/telemetry"
)

// Result describes one build invocation
type Result struct {
	BuildID string
	Watched []string
	Written []string
	Removed []string
}

// Runner drives the bundle step the way a bundler would: one build start, one
// bundle generation, then the emitted assets are written to disk.
type Runner struct {
	step    *assets.Step
	outDir  string
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

// NewRunner creates a runner writing into outDir. A nil metrics uses the global meter provider.
func NewRunner(step *assets.Step, outDir string, log zerolog.Logger, metrics *telemetry.Metrics) *Runner {
	if metrics == nil {
		metrics = telemetry.NewMetrics(nil)
	}
	return &Runner{
		step:    step,
		outDir:  outDir,
		logger:  log,
		metrics: metrics,
	}
}

// Step returns the bundle step this runner invokes
func (r *Runner) Step() *assets.Step {
	return r.step
}

// Build runs a single build. Assets emitted before a failure are still written,
// so a manifest error leaves plugin.js in place. Outputs from an earlier build
// that this build did not emit are removed.
func (r *Runner) Build(ctx context.Context) (Result, error) {
	started := time.Now()
	res := Result{BuildID: uuid.New().String()}
	ctx = logger.WithBuild(ctx, r.logger, res.BuildID)

	watch := &WatchSet{}
	out := NewDiskOutput(r.outDir)

	buildErr := r.step.Build(ctx, watch, out)
	res.Watched = watch.Paths()

	written, flushErr := out.Flush()
	res.Written = written
	for _, asset := range out.Assets()[:len(written)] {
		r.metrics.RecordAsset(ctx, asset.FileName, len(asset.Source))
	}

	removed, pruneErr := out.Prune(assets.PluginFileName, assets.ManifestFileName)
	res.Removed = removed

	err := errors.Join(buildErr, flushErr, pruneErr)

	kind := ""
	if err != nil {
		kind = assets.KindName(err)
	}
	r.metrics.RecordBuild(ctx, started, kind)

	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Strs("written", written).Strs("removed", removed).Dur("duration", time.Since(started)).Msg("Build failed")
		return res, err
	}

	zerolog.Ctx(ctx).Info().Strs("written", written).Dur("duration", time.Since(started)).Msg("Build complete")
	return res, nil
}
