// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // console, json
	Output io.Writer

	// RunID, if set, is attached to every event.
	RunID string
}

// Init replaces the global logger. Output defaults to stderr.
func Init(cfg Config) error {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("bad log level '%s': %w", cfg.Level, err)
		}
		level = parsed
	}

	switch cfg.Format {
	case "console", "":
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
		}
	case "json":
	default:
		return fmt.Errorf("unknown log format '%s'", cfg.Format)
	}

	ctx := zerolog.New(output).
		Level(level).
		With().
		Timestamp()
	if cfg.RunID != "" {
		ctx = ctx.Str("run_id", cfg.RunID)
	}

	log.Logger = ctx.Logger()
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}
