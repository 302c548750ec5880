package telemetry

import (
	"sync"
	"sync/atomic"
)

// Async decouples a slow sink from the emitter with a bounded buffer. When the
// buffer is full the event is dropped and counted.
type Async struct {
	inner   Sink
	events  chan Event
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewAsync starts the delivery goroutine. Close must be called to stop it.
func NewAsync(inner Sink, buffer int) *Async {
	if buffer <= 0 {
		buffer = 1
	}

	a := &Async{
		inner:  inner,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}

	go a.deliver()

	return a
}

func (a *Async) deliver() {
	defer close(a.done)

	for event := range a.events {
		a.inner.Emit(event)
	}
}

// Emit implements Sink without blocking.
func (a *Async) Emit(event Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.dropped.Add(1)
		return
	}

	select {
	case a.events <- event:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns the number of events lost to a full buffer or a closed sink.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Close flushes buffered events and stops the delivery goroutine.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	<-a.done
}
