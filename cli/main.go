// this program pulls a year's worth of tracks from spotify, enriches them
// with genres and audio features, loads a track extract into a database,
// and charts how popularity relates to all of it.
//
// see db/schema.sql for the database table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/popgenres/sigctx"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "popgenres: %s\n", err)
		os.Exit(1)
	}
}

var usage = strings.TrimSpace(`
usage: popgenres $cmd
valid $cmd are 'fetch', 'load', 'report', 'run', 'summary', 'serve'
for help: popgenres $cmd -help
`)

func run() error {
	ctx, stop := sigctx.New()
	defer stop()

	if len(os.Args) < 2 {
		return errors.New(usage)
	}
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "fetch":
		return fetch(ctx, args)

	case "load":
		return load(ctx, args)

	case "report":
		return draw(ctx, args)

	case "run":
		return pipeline(ctx, args)

	case "summary":
		return summary(ctx, args)

	case "serve":
		return serve(ctx, args)

	default:
		return fmt.Errorf("unknown cmd: '%s'\n%s", cmd, usage)
	}
}
