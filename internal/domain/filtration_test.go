package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sieve.dev/pkg/sieve/internal/adapter"
	"sieve.dev/pkg/sieve/internal/domain"
	domainmocks "sieve.dev/pkg/sieve/internal/domain/mocks"
	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

type filtrationFixture struct {
	sandbox  *domainmocks.MockSandbox
	coverage *domainmocks.MockCoverageEngine
	recorder *telemetry.Recorder
	session  *domain.Session
	filter   domain.Filtration
}

func newFiltrationFixture(t *testing.T) *filtrationFixture {
	t.Helper()

	codeAdapter := adapter.NewPythonCodeAdapter()
	f := &filtrationFixture{
		sandbox:  domainmocks.NewMockSandbox(t),
		coverage: domainmocks.NewMockCoverageEngine(t),
		recorder: &telemetry.Recorder{},
		session: &domain.Session{
			ID:           "session-1",
			Target:       coverageTarget,
			Baseline:     m.CoverageSnapshot{"foo.py": {1, 2}},
			Fingerprints: domain.NewFingerprintSet(),
		},
	}

	f.filter = domain.NewFiltration(f.sandbox, f.coverage, domain.NewDuplicateDetector(codeAdapter), codeAdapter, f.recorder, domain.FiltrationOptions{
		FlakyRuns:   5,
		ExecTimeout: time.Second,
	})

	return f
}

func (f *filtrationFixture) expectRuns(results ...m.RunResult) {
	for _, result := range results {
		f.sandbox.EXPECT().RunOnly(mock.Anything, mock.Anything, mock.Anything, mock.Anything, time.Second).
			Return(result, nil).Once()
	}
}

func passes(n int) []m.RunResult {
	results := make([]m.RunResult, n)
	for i := range results {
		results[i] = m.RunResult{Passed: true}
	}

	return results
}

func (f *filtrationFixture) expectCoverage(with, delta m.CoverageSnapshot) {
	f.coverage.EXPECT().WithCandidate(mock.Anything, mock.Anything, mock.Anything).Return(with, nil).Once()
	f.coverage.EXPECT().Delta(f.session.Baseline, with).Return(delta).Once()
}

func TestFiltration_SyntaxRejection(t *testing.T) {
	f := newFiltrationFixture(t)

	outcome, err := f.filter.Evaluate(context.Background(), f.session, m.Candidate{Seq: 1, Code: "def test_x(): imprt os"})
	require.NoError(t, err)

	assert.Equal(t, m.Rejected, outcome.Verdict.Status)
	assert.Equal(t, m.StageSyntax, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonSyntaxInvalid, outcome.Verdict.Reason)
	assert.Nil(t, outcome.Result)
}

func TestFiltration_ExecutionRejection(t *testing.T) {
	f := newFiltrationFixture(t)
	f.expectRuns(m.RunResult{Passed: false, ExitCode: 1, Output: "E   assert 4 == 5\n1 failed"})

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.RejectedAt(m.StageExecution, m.ReasonExecutionFailed, "exit code 1: E   assert 4 == 5 | 1 failed"), outcome.Verdict)
}

func TestFiltration_ExecutionTimeout(t *testing.T) {
	f := newFiltrationFixture(t)
	f.expectRuns(m.RunResult{TimedOut: true, ExitCode: -1, Duration: time.Second})

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.StageExecution, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonExecutionTimeout, outcome.Verdict.Reason)
}

func TestFiltration_FlakinessRejection(t *testing.T) {
	f := newFiltrationFixture(t)
	// Execution run, then runs 1 and 2 pass and run 3 of 5 fails.
	f.expectRuns(append(passes(3), m.RunResult{Passed: false, ExitCode: 1})...)

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.RejectedAt(m.StageFlakiness, m.ReasonFlaky, "failed run 3 of 5"), outcome.Verdict)
}

func TestFiltration_FlakinessHasNoMajorityVote(t *testing.T) {
	f := newFiltrationFixture(t)
	// Four of five flakiness runs pass; the last one fails.
	f.expectRuns(append(passes(5), m.RunResult{Passed: false, ExitCode: 1})...)

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.RejectedAt(m.StageFlakiness, m.ReasonFlaky, "failed run 5 of 5"), outcome.Verdict)
}

func TestFiltration_NoNewCoverage(t *testing.T) {
	f := newFiltrationFixture(t)
	f.expectRuns(passes(6)...)
	f.expectCoverage(m.CoverageSnapshot{"foo.py": {1, 2}}, m.CoverageSnapshot{})

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.StageCoverageDelta, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonNoNewCoverage, outcome.Verdict.Reason)
	assert.Equal(t, 0, f.session.Fingerprints.Len())
}

func TestFiltration_CoverageUnstable(t *testing.T) {
	f := newFiltrationFixture(t)
	f.expectRuns(passes(6)...)
	f.coverage.EXPECT().WithCandidate(mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: samples disagree", domain.ErrCoverageUnstable)).Once()

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.StageCoverageDelta, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonCoverageUnstable, outcome.Verdict.Reason)
}

func TestFiltration_MergedSuiteFailed(t *testing.T) {
	f := newFiltrationFixture(t)
	f.expectRuns(passes(6)...)
	f.coverage.EXPECT().WithCandidate(mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: exit code 1", domain.ErrMergedSuiteFailed)).Once()

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.StageCoverageDelta, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonMergedSuiteFailed, outcome.Verdict.Reason)
}

type failingFingerprinter struct{}

func (failingFingerprinter) Fingerprint(context.Context, string) (domain.Fingerprint, error) {
	return "", errors.New("normalize candidate: unexpected token")
}

func TestFiltration_FingerprintFailureIsNotADuplicate(t *testing.T) {
	f := newFiltrationFixture(t)
	codeAdapter := adapter.NewPythonCodeAdapter()
	f.filter = domain.NewFiltration(f.sandbox, f.coverage, failingFingerprinter{}, codeAdapter, f.recorder, domain.FiltrationOptions{
		FlakyRuns:   5,
		ExecTimeout: time.Second,
	})

	f.expectRuns(passes(6)...)
	f.expectCoverage(m.CoverageSnapshot{"foo.py": {1, 2, 3}}, m.CoverageSnapshot{"foo.py": {3}})

	outcome, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	assert.Equal(t, m.StageDuplicate, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonNormalizeFailed, outcome.Verdict.Reason)
	assert.Contains(t, outcome.Verdict.Detail, "unexpected token")
	assert.Zero(t, f.session.Fingerprints.Len())
}

func TestFiltration_SurvivorAndDuplicate(t *testing.T) {
	f := newFiltrationFixture(t)
	ctx := context.Background()

	with := m.CoverageSnapshot{"foo.py": {1, 2, 3, 4, 5}}
	delta := m.CoverageSnapshot{"foo.py": {3, 4, 5}}

	f.expectRuns(passes(6)...)
	f.expectCoverage(with, delta)

	outcome, err := f.filter.Evaluate(ctx, f.session, candidateB)
	require.NoError(t, err)

	require.True(t, outcome.Verdict.IsPassed())
	require.NotNil(t, outcome.Result)
	assert.Equal(t, delta, outcome.Result.Delta)
	assert.Equal(t, 3, outcome.Result.LinesAdded)
	assert.Equal(t, "test_b", outcome.Result.Candidate.Name)
	assert.Equal(t, 1, f.session.Fingerprints.Len())

	// A whitespace-only variant passes every stage up to Duplicate.
	variant := m.Candidate{Seq: 2, Code: "def test_b():\n\n      assert add(2,  2) == 4   \n"}

	f.expectRuns(passes(6)...)
	f.expectCoverage(with, delta)

	outcome, err = f.filter.Evaluate(ctx, f.session, variant)
	require.NoError(t, err)

	assert.Equal(t, m.StageDuplicate, outcome.Verdict.Stage)
	assert.Equal(t, m.ReasonDuplicate, outcome.Verdict.Reason)
	assert.Equal(t, 1, f.session.Fingerprints.Len())
}

func TestFiltration_InfrastructureErrorPropagates(t *testing.T) {
	f := newFiltrationFixture(t)
	f.sandbox.EXPECT().RunOnly(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(m.RunResult{}, fmt.Errorf("create workspace: %w: %w", domain.ErrInfrastructure, errors.New("disk full"))).Once()

	_, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}

func TestFiltration_EmitsStageEvents(t *testing.T) {
	f := newFiltrationFixture(t)
	f.expectRuns(m.RunResult{Passed: false, ExitCode: 1})

	_, err := f.filter.Evaluate(context.Background(), f.session, candidateB)
	require.NoError(t, err)

	var kinds []telemetry.Kind
	for _, event := range f.recorder.Events() {
		kinds = append(kinds, event.Kind)
		assert.Equal(t, "session-1", event.SessionID)
	}

	assert.Equal(t, []telemetry.Kind{
		telemetry.KindStageEntered, telemetry.KindStagePassed,
		telemetry.KindStageEntered, telemetry.KindStageRejected,
		telemetry.KindVerdict,
	}, kinds)

	verdicts := f.recorder.OfKind(telemetry.KindVerdict)
	require.Len(t, verdicts, 1)
	assert.Equal(t, m.StageExecution, verdicts[0].Stage)
	assert.Equal(t, m.ReasonExecutionFailed, verdicts[0].Reason)
}
