package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// WithBuild returns a context carrying a logger tagged with the build id, read
// back inside the build with zerolog.Ctx.
func WithBuild(ctx context.Context, logger zerolog.Logger, buildID string) context.Context {
	return logger.With().Str("build_id", buildID).Logger().WithContext(ctx)
}
