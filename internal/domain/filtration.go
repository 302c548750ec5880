package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

// Session is the state shared by every evaluation of one run.
type Session struct {
	ID           string
	Target       m.Target
	Baseline     m.CoverageSnapshot
	Fingerprints *FingerprintSet
}

// Outcome is the single verdict of a candidate. Result is set only for
// survivors.
type Outcome struct {
	Verdict m.StageVerdict
	Result  *m.TestCaseResult
}

// Filtration decides whether a candidate is kept.
type Filtration interface {
	// Evaluate runs the stages in order and stops at the first rejection.
	// Errors are returned only for infrastructure failures and cancellation.
	Evaluate(ctx context.Context, session *Session, candidate m.Candidate) (Outcome, error)
}

// FiltrationOptions tunes the stages.
type FiltrationOptions struct {
	FlakyRuns   int
	ExecTimeout time.Duration
}

type filtration struct {
	Sandbox
	CoverageEngine
	Fingerprinter
	codeAdapter adapter.CodeAdapter
	sink        telemetry.Sink
	opts        FiltrationOptions
	stages      []stage
}

// evaluation carries data between the stages of one candidate.
type evaluation struct {
	session   *Session
	candidate m.Candidate
	delta     m.CoverageSnapshot
}

// stage returns a nil verdict to let the candidate continue.
type stage struct {
	name   m.Stage
	reason m.Reason
	run    func(ctx context.Context, ev *evaluation) (*m.StageVerdict, error)
}

// NewFiltration constructs the five stage pipeline.
func NewFiltration(
	sandbox Sandbox,
	coverage CoverageEngine,
	fingerprinter Fingerprinter,
	codeAdapter adapter.CodeAdapter,
	sink telemetry.Sink,
	opts FiltrationOptions,
) Filtration {
	if opts.FlakyRuns <= 0 {
		opts.FlakyRuns = 5
	}

	if sink == nil {
		sink = telemetry.Discard
	}

	f := &filtration{
		Sandbox:        sandbox,
		CoverageEngine: coverage,
		Fingerprinter:  fingerprinter,
		codeAdapter:    codeAdapter,
		sink:           sink,
		opts:           opts,
	}

	f.stages = []stage{
		{name: m.StageSyntax, reason: m.ReasonSyntaxInvalid, run: f.checkSyntax},
		{name: m.StageExecution, reason: m.ReasonExecutionFailed, run: f.checkExecution},
		{name: m.StageFlakiness, reason: m.ReasonFlaky, run: f.checkFlakiness},
		{name: m.StageCoverageDelta, reason: m.ReasonCoverageUnstable, run: f.checkCoverage},
		{name: m.StageDuplicate, reason: m.ReasonDuplicate, run: f.checkDuplicate},
	}

	return f
}

func (f *filtration) Evaluate(ctx context.Context, session *Session, candidate m.Candidate) (Outcome, error) {
	ev := &evaluation{session: session, candidate: candidate}

	for _, st := range f.stages {
		f.emit(session, telemetry.NewEvent(telemetry.KindStageEntered).ForCandidate(ev.candidate), st.name, "", "", 0)

		start := time.Now()
		verdict, err := st.run(ctx, ev)
		elapsed := time.Since(start)

		if err != nil {
			if isFatal(err) {
				return Outcome{}, err
			}

			rejected := m.RejectedAt(st.name, st.reason, err.Error())
			verdict = &rejected
		}

		if verdict != nil {
			slog.Debug("Candidate rejected", "candidate", ev.candidate.Label(), "verdict", verdict.String())
			f.emit(session, telemetry.NewEvent(telemetry.KindStageRejected).ForCandidate(ev.candidate), st.name, verdict.Reason, verdict.Detail, elapsed)
			f.emit(session, telemetry.NewEvent(telemetry.KindVerdict).ForCandidate(ev.candidate), st.name, verdict.Reason, verdict.Detail, 0)

			return Outcome{Verdict: *verdict}, nil
		}

		f.emit(session, telemetry.NewEvent(telemetry.KindStagePassed).ForCandidate(ev.candidate), st.name, "", "", elapsed)
	}

	result := m.NewTestCaseResult(ev.candidate, session.Baseline, ev.delta)

	slog.Info("Candidate survived", "candidate", ev.candidate.Label(), "linesAdded", result.LinesAdded)
	f.emit(session, telemetry.NewEvent(telemetry.KindVerdict).ForCandidate(ev.candidate), m.StageSurvived, "", "", 0)

	return Outcome{Verdict: m.PassedVerdict(), Result: &result}, nil
}

func (f *filtration) emit(session *Session, event telemetry.Event, st m.Stage, reason m.Reason, detail string, elapsed time.Duration) {
	event.SessionID = session.ID
	event.Stage = st
	event.Reason = reason
	event.Detail = detail
	event.Duration = elapsed

	f.sink.Emit(event)
}

func (f *filtration) checkSyntax(ctx context.Context, ev *evaluation) (*m.StageVerdict, error) {
	name, err := f.codeAdapter.CheckFunction(ctx, adapter.NormalizeText(ev.candidate.Code))
	if err != nil {
		return reject(m.StageSyntax, m.ReasonSyntaxInvalid, err.Error()), nil
	}

	ev.candidate.Name = name

	return nil, nil
}

func (f *filtration) checkExecution(ctx context.Context, ev *evaluation) (*m.StageVerdict, error) {
	result, err := f.RunOnly(ctx, ev.session.Target, ev.candidate, ev.candidate.Name, f.opts.ExecTimeout)
	if err != nil {
		return nil, err
	}

	switch {
	case result.TimedOut:
		return reject(m.StageExecution, m.ReasonExecutionTimeout, describeRun(result)), nil
	case !result.Passed:
		return reject(m.StageExecution, m.ReasonExecutionFailed, describeRun(result)), nil
	}

	return nil, nil
}

// checkFlakiness requires every one of the extra runs to pass.
func (f *filtration) checkFlakiness(ctx context.Context, ev *evaluation) (*m.StageVerdict, error) {
	for run := 1; run <= f.opts.FlakyRuns; run++ {
		result, err := f.RunOnly(ctx, ev.session.Target, ev.candidate, ev.candidate.Name, f.opts.ExecTimeout)
		if err != nil {
			return nil, err
		}

		if !result.Passed {
			detail := fmt.Sprintf("failed run %d of %d", run, f.opts.FlakyRuns)
			if result.TimedOut {
				detail += " (timeout)"
			}

			return reject(m.StageFlakiness, m.ReasonFlaky, detail), nil
		}
	}

	return nil, nil
}

func (f *filtration) checkCoverage(ctx context.Context, ev *evaluation) (*m.StageVerdict, error) {
	with, err := f.WithCandidate(ctx, ev.session.Target, ev.candidate)
	if err != nil {
		switch {
		case errors.Is(err, ErrCoverageUnstable):
			return reject(m.StageCoverageDelta, m.ReasonCoverageUnstable, err.Error()), nil
		case errors.Is(err, ErrMergedSuiteFailed):
			return reject(m.StageCoverageDelta, m.ReasonMergedSuiteFailed, err.Error()), nil
		}

		return nil, err
	}

	delta := f.Delta(ev.session.Baseline, with)
	if delta.IsEmpty() {
		return reject(m.StageCoverageDelta, m.ReasonNoNewCoverage, ""), nil
	}

	ev.delta = delta

	return nil, nil
}

func (f *filtration) checkDuplicate(ctx context.Context, ev *evaluation) (*m.StageVerdict, error) {
	fp, err := f.Fingerprint(ctx, ev.candidate.Code)
	if err != nil {
		if isFatal(err) {
			return nil, err
		}

		return reject(m.StageDuplicate, m.ReasonNormalizeFailed, err.Error()), nil
	}

	if !ev.session.Fingerprints.Claim(fp) {
		return reject(m.StageDuplicate, m.ReasonDuplicate, "fingerprint "+shortFingerprint(fp)), nil
	}

	return nil, nil
}

func shortFingerprint(fp Fingerprint) string {
	if len(fp) > 12 {
		return string(fp[:12])
	}

	return string(fp)
}

func reject(st m.Stage, reason m.Reason, detail string) *m.StageVerdict {
	verdict := m.RejectedAt(st, reason, detail)
	return &verdict
}

// tail returns the last n non-empty lines of output joined by " | ".
func tail(output string, n int) string {
	var lines []string

	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.Join(lines, " | ")
}
