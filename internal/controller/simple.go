package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

// SimpleUI prints one line per notable event. It writes to the command's
// error stream so that stdout only carries the report.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start prints the session header.
func (s *SimpleUI) Start(ctx context.Context, info StartInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Improving %s with %d strateg%s at %d temperature(s) (%d generation / %d filtration workers)\n",
		info.TestFile, len(info.Strategies), plural(len(info.Strategies), "y", "ies"),
		len(info.Temperatures), info.GenerationWorkers, info.FiltrationWorkers)

	return nil
}

// Close is a no-op.
func (s *SimpleUI) Close(context.Context) {}

// Emit implements telemetry.Sink.
func (s *SimpleUI) Emit(event telemetry.Event) {
	line := describeEvent(event)
	if line == "" {
		return
	}

	s.printf("%s\n", line)
}

// DisplayReport prints the summary tables.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && err == nil {
		return ctxErr
	}

	s.printf("%s", renderReport(report))

	if err != nil {
		s.printf("Session aborted: %v\n", err)
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.out(), format, args...)
}

func (s *SimpleUI) out() io.Writer {
	return s.cmd.ErrOrStderr()
}

// describeEvent renders the events a user cares about; others yield "".
func describeEvent(event telemetry.Event) string {
	label := candidateLabel(event)

	switch event.Kind {
	case telemetry.KindBaseline:
		return fmt.Sprintf("Baseline coverage: %v line(s)", event.Data["lines"])
	case telemetry.KindGenerationFailed:
		return fmt.Sprintf("Generation failed (%s @ %.2f): %s", event.Strategy, event.Temperature, event.Detail)
	case telemetry.KindGenerationEmpty:
		return fmt.Sprintf("Generation returned no test (%s @ %.2f)", event.Strategy, event.Temperature)
	case telemetry.KindCandidateGenerated:
		return fmt.Sprintf("Generated %s (%s @ %.2f)", label, event.Strategy, event.Temperature)
	case telemetry.KindVerdict:
		if event.Stage == m.StageSurvived {
			return fmt.Sprintf("Completed %s -> survived", label)
		}

		line := fmt.Sprintf("Completed %s -> rejected at %s (%s)", label, event.Stage, event.Reason)
		if event.Detail != "" {
			line += ": " + event.Detail
		}

		return line
	default:
		return ""
	}
}

func candidateLabel(event telemetry.Event) string {
	label := fmt.Sprintf("#%d", event.Seq)
	if event.Candidate != "" {
		label += " " + event.Candidate
	}

	return label
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}

// truncateLine shortens s to width runes, marking the cut with an ellipsis.
func truncateLine(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")

	runes := []rune(s)
	if width <= 1 || len(runes) <= width {
		return s
	}

	return string(runes[:width-1]) + "…"
}
