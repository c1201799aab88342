package spotify_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amonks/popgenres/data"
	"github.com/amonks/popgenres/readthrough"
	"github.com/amonks/popgenres/request"
	"github.com/amonks/popgenres/spotify"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.Handler, configure func(*spotify.Config)) *spotify.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := spotify.Config{
		BaseURL:      srv.URL,
		HTTPClient:   srv.Client(),
		RetryBackoff: time.Millisecond,
	}
	if configure != nil {
		configure(&cfg)
	}
	return spotify.New(context.Background(), cfg)
}

func TestSearchTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		assert.Equal(t, "year:2019", q.Get("q"))
		assert.Equal(t, "track", q.Get("type"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "100", q.Get("offset"))
		fmt.Fprint(w, `{"tracks":{"offset":100,"items":[
			{"id":"t1","name":"Señorita","popularity":79,"artists":[{"id":"a1","name":"Shawn Mendes"},{"id":"a2","name":"Camila Cabello"}]},
			{"id":"t2","name":"bad guy","popularity":0,"artists":[{"id":"a3","name":"Billie Eilish"}]}
		]}}`)
	})
	spo := newTestClient(t, mux, nil)

	tracks, err := spo.SearchTracks(context.Background(), "year:2019", 50, 100)
	require.NoError(t, err)
	assert.Equal(t, []data.Track{
		{SpotifyID: "t1", Name: "Señorita", Popularity: 79, ArtistSpotifyID: "a1", ArtistName: "Shawn Mendes"},
		{SpotifyID: "t2", Name: "bad guy", Popularity: 0, ArtistSpotifyID: "a3", ArtistName: "Billie Eilish"},
	}, tracks)
}

func TestSearchTracksMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"no tracks object": `{"artists":{"items":[]}}`,
		"no artists":       `{"tracks":{"items":[{"id":"t1","name":"x","popularity":1,"artists":[]}]}}`,
		"no id":            `{"tracks":{"items":[{"name":"x","popularity":1,"artists":[{"id":"a","name":"b"}]}]}}`,
		"not json":         `<html></html>`,
	} {
		t.Run(name, func(t *testing.T) {
			spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				fmt.Fprint(w, body)
			}), nil)
			_, err := spo.SearchTracks(context.Background(), "year:2019", 50, 0)
			assert.ErrorIs(t, err, spotify.ErrMalformed)
		})
	}
}

func TestArtistGenres(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists/a1", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"id":"a1","name":"Shawn Mendes","genres":["canadian pop","pop","viral pop"]}`)
	})
	mux.HandleFunc("GET /artists/a2", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"id":"a2","name":"Nobody","genres":null}`)
	})
	spo := newTestClient(t, mux, nil)

	genres, err := spo.ArtistGenres(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"canadian pop", "pop", "viral pop"}, genres)

	genres, err = spo.ArtistGenres(context.Background(), "a2")
	require.NoError(t, err)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)
}

func TestAudioFeatures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /audio-features", func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Query().Get("ids") {
		case "t1":
			fmt.Fprint(w, `{"audio_features":[{"id":"t1","danceability":0.759,"energy":0.548,"loudness":-6.049,"valence":0.749,"tempo":116.967,"key":9}]}`)
		case "zzz":
			fmt.Fprint(w, `{"audio_features":[null]}`)
		case "empty":
			fmt.Fprint(w, `{"audio_features":[]}`)
		case "gone":
			http.Error(w, `{"error":{"status":404}}`, http.StatusNotFound)
		case "forbidden":
			http.Error(w, `{"error":{"status":403}}`, http.StatusForbidden)
		}
	})
	spo := newTestClient(t, mux, nil)
	ctx := context.Background()

	f, err := spo.AudioFeatures(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, data.AudioFeatures{
		TrackSpotifyID: "t1",
		Available:      true,
		Danceability:   0.759,
		Energy:         0.548,
		Loudness:       -6.049,
		Valence:        0.749,
		Tempo:          116.967,
	}, f)

	for _, id := range []string{"zzz", "empty", "gone"} {
		_, err := spo.AudioFeatures(ctx, id)
		assert.ErrorIs(t, err, spotify.ErrNoAudioFeatures, id)
	}

	_, err = spo.AudioFeatures(ctx, "forbidden")
	require.Error(t, err)
	assert.NotErrorIs(t, err, spotify.ErrNoAudioFeatures)
	assert.True(t, request.IsStatus(err, http.StatusForbidden))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "oops", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"genres":["pop"]}`)
	}), nil)

	genres, err := spo.ArtistGenres(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pop"}, genres)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}), func(cfg *spotify.Config) {
		cfg.MaxRetries = 2
	})

	_, err := spo.ArtistGenres(context.Background(), "a1")
	require.Error(t, err)
	assert.True(t, request.IsStatus(err, http.StatusTooManyRequests))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}), nil)

	_, err := spo.SearchTracks(context.Background(), "year:2019", 50, 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBreakerOpensOnDeadUpstream(t *testing.T) {
	var calls atomic.Int32
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}), func(cfg *spotify.Config) {
		cfg.MaxRetries = 2
		cfg.BreakerFailures = 2
	})
	ctx := context.Background()

	_, err := spo.ArtistGenres(ctx, "a1")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())

	_, err = spo.ArtistGenres(ctx, "a2")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}), func(cfg *spotify.Config) {
		cfg.BreakerFailures = 1
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := spo.AudioFeatures(ctx, "t1")
		assert.ErrorIs(t, err, spotify.ErrNoAudioFeatures)
	}
}

func TestCache(t *testing.T) {
	var calls atomic.Int32
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"genres":["k-pop"]}`)
	}), func(cfg *spotify.Config) {
		cfg.Cache = readthrough.New(t.TempDir(), "spotify-")
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		genres, err := spo.ArtistGenres(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"k-pop"}, genres)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheSkipsMalformedResponses(t *testing.T) {
	var calls atomic.Int32
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `<html>upstream hiccup</html>`)
			return
		}
		fmt.Fprint(w, `{"genres":["k-pop"]}`)
	}), func(cfg *spotify.Config) {
		cfg.Cache = readthrough.New(t.TempDir(), "spotify-")
	})
	ctx := context.Background()

	_, err := spo.ArtistGenres(ctx, "a1")
	assert.ErrorIs(t, err, spotify.ErrMalformed)

	for i := 0; i < 2; i++ {
		genres, err := spo.ArtistGenres(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"k-pop"}, genres)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestBadCredentialsAreNotRetried(t *testing.T) {
	var tokenCalls, apiCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, req *http.Request) {
		tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		apiCalls.Add(1)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	spo := spotify.New(context.Background(), spotify.Config{
		ClientID:        "id",
		ClientSecret:    "wrong",
		BaseURL:         srv.URL,
		TokenURL:        srv.URL + "/token",
		MaxRetries:      3,
		RetryBackoff:    time.Millisecond,
		BreakerFailures: 1,
	})

	_, err := spo.ArtistGenres(context.Background(), "a1")
	var tokenErr *oauth2.RetrieveError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, http.StatusUnauthorized, tokenErr.Response.StatusCode)
	// one exchange, which may probe both ways of sending credentials
	assert.LessOrEqual(t, tokenCalls.Load(), int32(2))
	assert.Zero(t, apiCalls.Load())

	_, err = spo.ArtistGenres(context.Background(), "a1")
	assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCanceled(t *testing.T) {
	spo := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"genres":[]}`)
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := spo.ArtistGenres(ctx, "a1")
	assert.ErrorIs(t, err, context.Canceled)
}
