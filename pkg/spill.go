// Package pkg provides small utilities shared by sieve commands.
package pkg

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrSpillClosed is returned by Append after Close.
var ErrSpillClosed = errors.New("spill is closed")

// Spill is an append-only on-disk log of items of type T, stored as JSON lines.
// It keeps memory flat for sessions that reject many candidates.
type Spill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Range(fn func(index uint64, item T) error) error
	Close() error
}

type spill[T any] struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	length uint64
	closed bool
}

// NewSpill creates a spill file in dir. An empty dir selects
// $TMPDIR/sieve-spill.
func NewSpill[T any](dir string) (Spill[T], error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "sieve-spill")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create spill directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "spill-*.jsonl")
	if err != nil {
		slog.Error("failed to create spill file", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	slog.Debug("created spill", "path", file.Name())

	return &spill[T]{
		path:   file.Name(),
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Append implements Spill.
func (s *spill[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(item)
}

func (s *spill[T]) appendLocked(item T) error {
	if s.closed {
		return ErrSpillClosed
	}

	line, err := json.Marshal(item)
	if err != nil {
		slog.Error("failed to encode item", "path", s.path, "index", s.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	line = append(line, '\n')

	if _, err := s.writer.Write(line); err != nil {
		slog.Error("failed to write item", "path", s.path, "index", s.length, "error", err)
		return fmt.Errorf("failed to write item: %w", err)
	}

	s.length++

	return nil
}

// AppendBatch implements Spill.
func (s *spill[T]) AppendBatch(items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if err := s.appendLocked(item); err != nil {
			return err
		}
	}

	return nil
}

// Path implements Spill.
func (s *spill[T]) Path() string {
	return s.path
}

// Len implements Spill.
func (s *spill[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Range implements Spill. Items are decoded from disk in append order.
func (s *spill[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		if err := s.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush spill: %w", err)
		}
	}

	file, err := os.Open(s.path)
	if err != nil {
		slog.Error("failed to open spill for range", "path", s.path, "error", err)
		return fmt.Errorf("failed to open spill: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close spill", "path", s.path, "error", err)
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var index uint64

	for scanner.Scan() && index < s.length {
		var item T
		if err := json.Unmarshal(scanner.Bytes(), &item); err != nil {
			slog.Error("failed to decode item during range", "path", s.path, "index", index, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", index, err)
		}

		if err := fn(index, item); err != nil {
			return err
		}

		index++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read spill: %w", err)
	}

	return nil
}

// Close flushes and closes the spill file. The file itself is kept.
func (s *spill[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	flushErr := s.writer.Flush()
	closeErr := s.file.Close()

	if err := errors.Join(flushErr, closeErr); err != nil {
		slog.Error("failed to close spill", "path", s.path, "error", err)
		return err
	}

	slog.Debug("closed spill", "path", s.path, "length", s.length)

	return nil
}
