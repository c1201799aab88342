package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/amonks/popgenres/logging"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logging.Init(logging.Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
		RunID:  "run-1",
	}))

	log.Debug().Msg("hidden")
	log.Info().Int("tracks", 1000).Msg("fetched catalog")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "fetched catalog", event["message"])
	assert.Equal(t, "run-1", event["run_id"])
	assert.Equal(t, float64(1000), event["tracks"])
}

func TestInitConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logging.Init(logging.Config{Level: "debug", Output: &buf}))

	log.Debug().Str("chart", "tempo").Msg("rendered chart")
	assert.Contains(t, buf.String(), "rendered chart")
	assert.Contains(t, buf.String(), "tempo")
}

func TestInitErrors(t *testing.T) {
	assert.Error(t, logging.Init(logging.Config{Level: "loud"}))
	assert.Error(t, logging.Init(logging.Config{Format: "xml"}))
}
