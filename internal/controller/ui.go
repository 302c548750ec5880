// Package controller renders session progress and reports for the terminal.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

// StartInfo describes the session about to run.
type StartInfo struct {
	TestFile          m.Path
	Strategies        []string
	Temperatures      []float64
	GenerationWorkers int
	FiltrationWorkers int
}

// Requests is the number of generation calls the session will issue.
func (s StartInfo) Requests(ensemble bool) int {
	if !ensemble {
		return 1
	}

	return len(s.Strategies) * len(s.Temperatures)
}

// UI displays a session. It observes progress as a telemetry sink; Emit may
// block, so callers wrap it in telemetry.Async.
type UI interface {
	telemetry.Sink
	Start(ctx context.Context, info StartInfo) error
	// Close stops live rendering. It is safe to call more than once.
	Close(ctx context.Context)
	DisplayReport(ctx context.Context, report m.Report, err error) error
}

// NewUI picks the TUI for terminals and the line based UI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.ErrOrStderr())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when unknown.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}

	return width
}
