package main

import (
	"context"
	"fmt"

	"github.com/amonks/popgenres/server"
	"github.com/amonks/popgenres/subcmd"
)

func serve(ctx context.Context, args []string) error {
	subcmd := subcmd.New("serve", "serve the rendered charts over http")
	subcmd.SetArg("dir", "path", "directory to serve (default from config, 'Images')")
	var (
		port = subcmd.Int("port", 9999, "http port")
	)
	cfg, err := setup(subcmd, args)
	if err != nil {
		return err
	}

	dir := cfg.Output.ImagesDir
	if subcmd.NArg() > 0 {
		dir = subcmd.Arg(0)
	}

	addr := fmt.Sprintf(":%d", *port)
	return server.Run(ctx, dir, addr)
}
