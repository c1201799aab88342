package limiter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// New creates a Limiter that spaces calls at least delay apart. Pauses
// requested with PauseFor are written to filename, so that a rerun started
// right after a rate-limited run still honors them. With an empty filename
// pauses are only kept in memory; a zero delay disables the spacing.
func New(filename string, delay time.Duration) *Limiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Limiter{
		filename: filename,
		rl:       rate.NewLimiter(limit, 1),
	}
}

type Limiter struct {
	filename string
	rl       *rate.Limiter
	nextAt   time.Time
}

// Load reads a pause left behind by a previous run.
func (lim *Limiter) Load() error {
	if lim.filename == "" {
		return nil
	}
	bs, err := os.ReadFile(lim.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error reading limiter file '%s': %w", lim.filename, err)
	}

	nextAt, err := time.Parse(time.UnixDate, string(bs))
	if err != nil {
		return fmt.Errorf("error parsing limiter file '%s': %w", lim.filename, err)
	}
	lim.nextAt = nextAt
	return nil
}

// Wait blocks until any pause has elapsed and the next call slot is free.
func (lim *Limiter) Wait(ctx context.Context) error {
	if !lim.nextAt.IsZero() {
		dur := time.Until(lim.nextAt)
		if dur > time.Second {
			log.Info().
				Dur("wait", dur.Truncate(time.Second)).
				Str("until", lim.nextAt.Format(time.StampMilli)).
				Msg("rate limited; waiting")
		}

		if dur > 0 {
			timer := time.NewTimer(dur)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lim.nextAt = time.Time{}
		if lim.filename != "" {
			if err := os.Remove(lim.filename); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("error removing limiter file '%s': %w", lim.filename, err)
			}
		}
	}

	return lim.rl.Wait(ctx)
}

// PauseFor holds off every call for the given duration, plus a second of
// slack.
func (lim *Limiter) PauseFor(dur time.Duration) error {
	lim.nextAt = time.Now().Add(dur + time.Second)
	if lim.filename == "" {
		return nil
	}
	if err := os.WriteFile(lim.filename, []byte(lim.nextAt.Format(time.UnixDate)), 0666); err != nil {
		return fmt.Errorf("error writing limiter file '%s': %w", lim.filename, err)
	}
	return nil
}

// NextAt returns the end of the current pause, or the zero time.
func (lim *Limiter) NextAt() time.Time {
	return lim.nextAt
}
