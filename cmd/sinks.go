package cmd

import (
	"log/slog"

	"sieve.dev/pkg/sieve/internal/telemetry"
)

const (
	uiEventBuffer     = 1024
	recordEventBuffer = 8192
)

// sessionSinks delivers session events to the progress display and to the
// recording sinks (metrics, optional JSONL file). Each side has its own
// buffered goroutine, so Emit never waits on a terminal or a disk.
type sessionSinks struct {
	ui      *telemetry.Async
	records *telemetry.Async
	metrics *telemetry.Metrics
	events  *telemetry.JSONL
}

func newSessionSinks(ui telemetry.Sink, telemetryFile string) *sessionSinks {
	s := &sessionSinks{
		ui:      telemetry.NewAsync(ui, uiEventBuffer),
		metrics: telemetry.NewMetrics(),
	}

	records := []telemetry.Sink{s.metrics}

	if telemetryFile != "" {
		s.events = telemetry.NewJSONLFile(telemetryFile)
		records = append(records, s.events)
	}

	s.records = telemetry.NewAsync(telemetry.Multi(records...), recordEventBuffer)

	return s
}

// Emit implements telemetry.Sink.
func (s *sessionSinks) Emit(event telemetry.Event) {
	s.ui.Emit(event)
	s.records.Emit(event)
}

// Close flushes both sides and closes the event file.
func (s *sessionSinks) Close() {
	s.ui.Close()
	s.records.Close()

	if dropped := s.ui.Dropped(); dropped > 0 {
		slog.Debug("Progress events dropped", "count", dropped)
	}

	if dropped := s.records.Dropped(); dropped > 0 {
		slog.Warn("Telemetry events dropped", "count", dropped)
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			slog.Warn("Failed to close telemetry file", "error", err)
		}
	}
}
