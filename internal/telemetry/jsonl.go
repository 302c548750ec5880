package telemetry

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// JSONL writes one JSON object per event.
type JSONL struct {
	mu  sync.Mutex
	enc *json.Encoder
	out io.Writer
}

// NewJSONL writes events to out.
func NewJSONL(out io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(out), out: out}
}

// NewJSONLFile writes events to a size-rotated file.
func NewJSONLFile(path string) *JSONL {
	return NewJSONL(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
}

// Emit implements Sink.
func (j *JSONL) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(event); err != nil {
		slog.Warn("Failed to write telemetry event", "kind", event.Kind, "error", err)
	}
}

// Close closes the underlying writer when it is closable.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if closer, ok := j.out.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
