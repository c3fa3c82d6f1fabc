package host

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce groups the burst of events editors produce for a single save
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-runs the build whenever one of the watched inputs changes. It
// watches parent directories rather than the files themselves so that editors
// which save by rename, and inputs that do not exist yet, are still picked up.
type Watcher struct {
	runner   *Runner
	debounce time.Duration
	logger   zerolog.Logger
	onBuild  func(Result, error)
}

func NewWatcher(runner *Runner, debounce time.Duration, log zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		runner:   runner,
		debounce: debounce,
		logger:   log,
	}
}

// OnBuild registers fn to be called after every build, successful or not
func (w *Watcher) OnBuild(fn func(Result, error)) {
	w.onBuild = fn
}

// Run builds once and then on every change until ctx is cancelled. Failed builds
// are logged and the watcher waits for the next change.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	cfg := w.runner.Step().Config()
	inputs := []string{cfg.EntryPath, cfg.ManifestPath}

	targets := make(map[string]struct{})
	dirs := make(map[string]struct{})
	w.track(fsw, targets, dirs, inputs)

	var (
		last   uint64
		lastOK bool
	)

	build := func() {
		fp, fpErr := Fingerprint(inputs...)

		res, err := w.runner.Build(ctx)
		w.track(fsw, targets, dirs, res.Watched)

		lastOK = err == nil && fpErr == nil
		last = fp

		if w.onBuild != nil {
			w.onBuild(res, err)
		}
	}

	build()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if _, hit := targets[filepath.Clean(event.Name)]; !hit {
				continue
			}

			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Input changed")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")

		case <-fire:
			fire = nil

			fp, err := Fingerprint(inputs...)
			if err == nil && lastOK && fp == last {
				w.runner.metrics.RebuildsSkipped.Add(ctx, 1)
				w.logger.Debug().Msg("Inputs unchanged, skipping rebuild")
				continue
			}

			build()
		}
	}
}

// track adds paths to the target set and watches their parent directories.
func (w *Watcher) track(fsw *fsnotify.Watcher, targets, dirs map[string]struct{}, paths []string) {
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("Failed to resolve watch path")
			continue
		}
		targets[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to watch directory")
			continue
		}
		dirs[dir] = struct{}{}
	}
}
