package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sieve.dev/pkg/sieve/internal/telemetry"
)

func TestSessionSinks_StalledUIDoesNotBlockEmit(t *testing.T) {
	release := make(chan struct{})
	stalled := telemetry.SinkFunc(func(telemetry.Event) { <-release })

	path := filepath.Join(t.TempDir(), "events.jsonl")
	sinks := newSessionSinks(stalled, path)

	const events = 3 * uiEventBuffer

	emitted := make(chan struct{})

	go func() {
		defer close(emitted)

		for i := 0; i < events; i++ {
			sinks.Emit(telemetry.NewEvent(telemetry.KindCandidateGenerated))
		}
	}()

	select {
	case <-emitted:
	case <-time.After(5 * time.Second):
		close(release)
		t.Fatal("Emit blocked on a stalled UI")
	}

	close(release)
	sinks.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, events, strings.Count(string(data), "\n"), "every event reaches the telemetry file")
	assert.Positive(t, sinks.ui.Dropped())
	assert.Zero(t, sinks.records.Dropped())
}

func TestSessionSinks_MetricsWithoutFile(t *testing.T) {
	rec := &telemetry.Recorder{}
	sinks := newSessionSinks(rec, "")

	sinks.Emit(telemetry.NewEvent(telemetry.KindSessionStarted))
	sinks.Close()

	assert.Nil(t, sinks.events)
	assert.Len(t, rec.Events(), 1)

	path := filepath.Join(t.TempDir(), "sieve.prom")
	require.NoError(t, sinks.metrics.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sieve_")
}
