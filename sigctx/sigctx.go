// Package sigctx provides a context that is canceled on SIGINT or SIGTERM.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns a context that is done once the process receives SIGINT or
// SIGTERM. Call stop to release the signal handler.
func New() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
