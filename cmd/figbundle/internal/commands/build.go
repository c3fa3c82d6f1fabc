package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/figbundle/internal/logger"
)

type BuildCmd struct {
	BuildFlags `embed:""`
}

func (b *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	log.Debug().Str("version", globals.Version).Msg("Starting build")

	shutdown := b.setupTelemetry(ctx, log, globals.Version)
	defer shutdown()

	runner, err := b.newRunner(log)
	if err != nil {
		return err
	}

	res, err := runner.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	for _, path := range res.Written {
		fmt.Printf("wrote %s\n", path)
	}

	return nil
}
