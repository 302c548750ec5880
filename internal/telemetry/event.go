// Package telemetry carries session events from the filtration engine to
// observers. Sinks must never block the caller.
package telemetry

import (
	"sync"
	"time"

	m "sieve.dev/pkg/sieve/internal/model"
)

// Kind names an event type.
type Kind string

// Event kinds emitted by a session.
const (
	KindSessionStarted     Kind = "session.started"
	KindSessionFinished    Kind = "session.finished"
	KindBaseline           Kind = "coverage.baseline"
	KindGenerationFailed   Kind = "generation.failed"
	KindGenerationEmpty    Kind = "generation.empty"
	KindCandidateGenerated Kind = "candidate.generated"
	KindStageEntered       Kind = "stage.entered"
	KindStagePassed        Kind = "stage.passed"
	KindStageRejected      Kind = "stage.rejected"
	KindVerdict            Kind = "candidate.verdict"
)

// Event is one observation. Only the fields relevant to Kind are set.
type Event struct {
	Kind        Kind           `json:"kind"`
	Time        time.Time      `json:"time"`
	SessionID   string         `json:"session_id,omitempty"`
	Seq         uint64         `json:"seq,omitempty"`
	Candidate   string         `json:"candidate,omitempty"`
	Strategy    string         `json:"strategy,omitempty"`
	Temperature float64        `json:"temperature,omitempty"`
	Stage       m.Stage        `json:"stage,omitempty"`
	Reason      m.Reason       `json:"reason,omitempty"`
	Detail      string         `json:"detail,omitempty"`
	Duration    time.Duration  `json:"duration_ns,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// NewEvent returns an event of kind stamped with the current time.
func NewEvent(kind Kind) Event {
	return Event{Kind: kind, Time: time.Now()}
}

// ForCandidate copies the identifying fields of c into the event.
func (e Event) ForCandidate(c m.Candidate) Event {
	e.Seq = c.Seq
	e.Candidate = c.Name
	e.Strategy = c.Strategy
	e.Temperature = c.Temperature

	return e
}

// Sink receives events.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(event Event)

// Emit implements Sink.
func (f SinkFunc) Emit(event Event) {
	f(event)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))

	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}

	switch len(filtered) {
	case 0:
		return Discard
	case 1:
		return filtered[0]
	}

	return SinkFunc(func(event Event) {
		for _, sink := range filtered {
			sink.Emit(event)
		}
	})
}

// Recorder keeps every event in memory. It is meant for tests and small runs.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

// OfKind returns the recorded events of the given kind.
func (r *Recorder) OfKind(kind Kind) []Event {
	var out []Event

	for _, event := range r.Events() {
		if event.Kind == kind {
			out = append(out, event)
		}
	}

	return out
}
