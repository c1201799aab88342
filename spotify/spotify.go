package spotify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/amonks/popgenres/limiter"
	"github.com/amonks/popgenres/readthrough"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	defaultMaxRetries      = 3
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultBreakerFailures = 5
)

var (
	// ErrNoAudioFeatures is returned by AudioFeatures when the catalog has
	// no analysis for a track.
	ErrNoAudioFeatures = errors.New("no audio features available")

	// ErrMalformed is returned when a response doesn't have the shape we
	// expect.
	ErrMalformed = errors.New("malformed response")
)

// Config configures a Client. Only the credentials are required.
type Config struct {
	ClientID     string
	ClientSecret string

	BaseURL  string
	TokenURL string

	// MaxRetries is the number of attempts made for a request that fails
	// with a transport error, a 429, or a 5xx.
	MaxRetries   int
	RetryBackoff time.Duration

	// BreakerFailures is the number of consecutive failed attempts after
	// which the client stops making requests.
	BreakerFailures uint32

	// HTTPClient, if set, is used as-is, and no token exchange happens.
	HTTPClient *http.Client

	// Limiter spaces out requests and holds Retry-After pauses. If nil,
	// requests aren't spaced.
	Limiter *limiter.Limiter

	// Cache, if set, stores successful responses by URL.
	Cache *readthrough.ReadThrough
}

// Client talks to the Spotify Web API. It isn't safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	maxRetries   int
	retryBackoff time.Duration

	limiter *limiter.Limiter
	cache   *readthrough.ReadThrough
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// New creates a new Spotify client. Unless cfg.HTTPClient is set, requests
// are authorized with an app token from the client credentials flow, which
// is fetched on first use and refreshed as it expires.
func New(ctx context.Context, cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		creds := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
		}
		httpClient = creds.Client(ctx)
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	spo := &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		limiter:      cfg.Limiter,
		cache:        cfg.Cache,
	}
	if spo.maxRetries <= 0 {
		spo.maxRetries = defaultMaxRetries
	}
	if spo.retryBackoff <= 0 {
		spo.retryBackoff = defaultRetryBackoff
	}
	if spo.limiter == nil {
		spo.limiter = limiter.New("", 0)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	spo.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name: "spotify",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A 404 or a 400 says nothing about the health of the API.
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return spo
}
