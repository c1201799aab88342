package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amonks/popgenres/readthrough"
	"github.com/amonks/popgenres/request"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

// get fetches path below the base url and hands the response body to
// decode. A body is only cached once decode accepts it, and a cached body
// that decode rejects is fetched again.
//
// Transport errors, 429s, and 5xxs are retried with exponential backoff. A
// Retry-After header replaces the backoff, and is handed to the limiter so
// that it also holds off whatever request comes next. Other non-2xx
// responses are returned at once as a *request.StatusError.
func (spo *Client) get(ctx context.Context, path string, query url.Values, decode func([]byte) error) error {
	u := spo.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if spo.cache != nil {
		body, err := spo.cache.Get(u)
		switch {
		case err == nil:
			decodeErr := decode(body)
			if decodeErr == nil {
				return nil
			}
			log.Warn().Err(decodeErr).Str("url", u).Msg("discarding cached response")
		case !errors.Is(err, readthrough.ErrMiss):
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt < spo.maxRetries; attempt++ {
		if err := spo.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request canceled: %w", err)
		}

		body, err := spo.breaker.Execute(func() ([]byte, error) {
			return spo.do(ctx, u)
		})
		if err == nil {
			if err := decode(body); err != nil {
				return err
			}
			if spo.cache != nil {
				return spo.cache.Put(u, body)
			}
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if attempt == spo.maxRetries-1 {
			break
		}

		log.Warn().
			Err(err).
			Str("url", u).
			Int("attempt", attempt+1).
			Int("max_attempts", spo.maxRetries).
			Msg("retrying request")

		var statusErr *request.StatusError
		if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
			if err := spo.limiter.PauseFor(statusErr.RetryAfter); err != nil {
				return err
			}
			continue
		}
		if err := sleep(ctx, spo.retryBackoff*time.Duration(1<<attempt)); err != nil {
			return fmt.Errorf("request canceled: %w", err)
		}
	}

	return fmt.Errorf("request to '%s' failed after %d attempts: %w", u, spo.maxRetries, lastErr)
}

func (spo *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}

	resp, err := spo.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if err := request.Error(resp); err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading body from '%s': %w", u, err)
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	code := 0
	var statusErr *request.StatusError
	var tokenErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &statusErr):
		code = statusErr.Code
	case errors.As(err, &tokenErr) && tokenErr.Response != nil:
		// the token exchange failed, eg on bad credentials
		code = tokenErr.Response.StatusCode
	default:
		return true
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sleep(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
