package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/figbundle/internal/host"
	"github.com/wolfeidau/figbundle/internal/logger"
)

type WatchCmd struct {
	BuildFlags `embed:""`

	Debounce time.Duration `help:"delay before rebuilding after a change" default:"100ms" env:"FIGBUNDLE_DEBOUNCE"`
}

func (w *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := w.setupTelemetry(ctx, log, globals.Version)
	defer shutdown()

	runner, err := w.newRunner(log)
	if err != nil {
		return err
	}

	log.Info().Dur("debounce", w.Debounce).Msg("Watching for changes")

	return host.NewWatcher(runner, w.Debounce, log).Run(ctx)
}
