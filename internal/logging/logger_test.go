package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")

	log.Debug().Msg("hidden")
	log.Info().Msg("also hidden")
	log.Warn().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestSubAddsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	log.Sub("search").Info().Msg("hello")

	assert.Contains(t, buf.String(), `"subsystem":"search"`)
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "bogus", "json")

	log.Debug().Msg("debug line")
	log.Info().Msg("info line")

	lines := strings.TrimSpace(buf.String())
	assert.NotContains(t, lines, "debug line")
	assert.Contains(t, lines, "info line")
}

func TestDiscard(t *testing.T) {
	// Must not panic and must swallow everything.
	Discard().Error().Msg("nope")
}
