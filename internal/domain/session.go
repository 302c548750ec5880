package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
	"sieve.dev/pkg/sieve/pkg"
)

// RunArgs are the inputs of one improvement session.
type RunArgs struct {
	TestFile          m.Path    `validate:"required"`
	SourceFile        m.Path    `validate:"omitempty"`
	Strategies        []string  `validate:"required,min=1,dive,required"`
	Temperatures      []float64 `validate:"required,min=1,dive,gte=0,lte=2"`
	GenerationWorkers int       `validate:"gte=1"`
	FiltrationWorkers int       `validate:"gte=1"`
	FlakyRuns         int       `validate:"gte=1"`
	// Ensemble disabled runs the first strategy at the first temperature only.
	Ensemble bool
}

// Engines bundles the language specific components of one session.
type Engines struct {
	Code       adapter.CodeAdapter
	Ensemble   Ensemble
	Coverage   CoverageEngine
	Filtration Filtration
}

// EngineFactory builds the Engines for a resolved target.
type EngineFactory func(ctx context.Context, sessionID string, target m.Target, args RunArgs) (Engines, error)

// Aggregator runs sessions end to end.
type Aggregator interface {
	// Run returns the report of the session. On an infrastructure failure or
	// cancellation the partial report is returned together with the error.
	Run(ctx context.Context, args RunArgs) (m.Report, error)
}

type aggregator struct {
	adapter.SourceFSAdapter
	factory    EngineFactory
	strategies *StrategySet
	sink       telemetry.Sink
	spillDir   string
	validate   *validator.Validate
}

// NewAggregator constructs an Aggregator. Rejections are spilled to files in
// spillDir (the system temp dir when empty).
func NewAggregator(
	fsAdapter adapter.SourceFSAdapter,
	factory EngineFactory,
	strategies *StrategySet,
	sink telemetry.Sink,
	spillDir string,
) Aggregator {
	if sink == nil {
		sink = telemetry.Discard
	}

	return &aggregator{
		SourceFSAdapter: fsAdapter,
		factory:         factory,
		strategies:      strategies,
		sink:            sink,
		spillDir:        spillDir,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *aggregator) Run(ctx context.Context, args RunArgs) (report m.Report, err error) {
	if err := a.validateArgs(args); err != nil {
		return m.Report{}, err
	}

	target, err := ResolveTarget(ctx, a.SourceFSAdapter, args.TestFile, args.SourceFile)
	if err != nil {
		return m.Report{}, err
	}

	sessionID := uuid.NewString()
	report = m.NewReport(sessionID, target)

	engines, err := a.factory(ctx, sessionID, target, args)
	if err != nil {
		return report, fmt.Errorf("build engines: %w", err)
	}

	rejections, err := pkg.NewSpill[m.Rejection](a.spillDir)
	if err != nil {
		return report, infraError("create rejection spill", err)
	}

	defer func() {
		if closeErr := rejections.Close(); closeErr != nil {
			slog.Warn("Failed to close rejection spill", "path", rejections.Path(), "error", closeErr)
		}
	}()

	slog.Info("Session started", "session", sessionID, "testFile", target.TestFile, "language", target.Language)
	a.emit(sessionID, telemetry.KindSessionStarted, map[string]any{
		"test_file":   string(target.TestFile),
		"language":    string(target.Language),
		"spill":       rejections.Path(),
		"strategies":  args.Strategies,
		"temperature": args.Temperatures,
	})

	defer func() {
		report.FinishedAt = time.Now()
		a.emit(sessionID, telemetry.KindSessionFinished, map[string]any{
			"survivors": len(report.Survivors),
			"rejected":  report.Rejected(),
			"generated": report.Generated,
		})
	}()

	baseline, err := engines.Coverage.Baseline(ctx, target)
	if err != nil {
		slog.Error("Failed to measure baseline coverage", "testFile", target.TestFile, "error", err)
		return report, fmt.Errorf("baseline coverage: %w", err)
	}

	report.BaselineLines = baseline.LineCount()
	a.emit(sessionID, telemetry.KindBaseline, map[string]any{"lines": baseline.LineCount(), "files": len(baseline)})

	session := &Session{
		ID:           sessionID,
		Target:       target,
		Baseline:     baseline,
		Fingerprints: NewFingerprintSet(),
	}

	requests := BuildRequests(target, args.Strategies, args.Temperatures, args.Ensemble)
	report.Requests = len(requests)

	err = a.filter(ctx, session, engines, requests, args, &report, rejections)

	report.Improved = a.merge(ctx, engines.Code, target, report.Survivors)

	if err != nil {
		return report, err
	}

	slog.Info("Session finished", "session", sessionID, "survivors", len(report.Survivors), "rejected", report.Rejected())

	return report, nil
}

// filter streams candidates from the ensemble through a bounded pool of
// filtration workers. The first fatal error cancels generation and the
// remaining evaluations; the candidate stream is drained before returning.
func (a *aggregator) filter(
	ctx context.Context,
	session *Session,
	engines Engines,
	requests []m.GenerationRequest,
	args RunArgs,
	report *m.Report,
	rejections pkg.Spill[m.Rejection],
) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(args.FiltrationWorkers)

	candidates := engines.Ensemble.Generate(groupCtx, requests, args.GenerationWorkers)

	var mu sync.Mutex

	for candidate := range candidates {
		if groupCtx.Err() != nil {
			continue
		}

		mu.Lock()
		report.Generated++
		mu.Unlock()

		group.Go(func() error {
			outcome, err := engines.Filtration.Evaluate(groupCtx, session, candidate)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			a.record(session, report, rejections, candidate, outcome)

			return nil
		})
	}

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		slog.Error("Session aborted", "session", session.ID, "error", err)
	}

	return err
}

func (a *aggregator) record(session *Session, report *m.Report, rejections pkg.Spill[m.Rejection], candidate m.Candidate, outcome Outcome) {
	if outcome.Verdict.IsPassed() {
		report.Survivors = append(report.Survivors, *outcome.Result)
		return
	}

	report.RejectedBy[outcome.Verdict.Stage]++
	report.RejectedFor[outcome.Verdict.Reason]++

	rejection := m.Rejection{
		SessionID: session.ID,
		Candidate: candidate,
		Stage:     outcome.Verdict.Stage,
		Reason:    outcome.Verdict.Reason,
		Detail:    outcome.Verdict.Detail,
	}

	if err := rejections.Append(rejection); err != nil {
		slog.Warn("Failed to spill rejection", "candidate", candidate.Label(), "error", err)
	}
}

// merge folds the survivors into the test file in completion order.
func (a *aggregator) merge(ctx context.Context, code adapter.CodeAdapter, target m.Target, survivors []m.TestCaseResult) []byte {
	merged := target.TestCode

	for _, survivor := range survivors {
		next, err := code.Merge(context.WithoutCancel(ctx), target.TestFile, merged, survivor.Candidate.Code)
		if err != nil {
			slog.Warn("Failed to merge survivor", "candidate", survivor.Candidate.Label(), "error", err)
			continue
		}

		merged = next
	}

	return merged
}

func (a *aggregator) validateArgs(args RunArgs) error {
	if err := a.validate.Struct(args); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			first := validationErrs[0]
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidArgs, first.Namespace(), first.Tag())
		}

		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}

	for _, name := range args.Strategies {
		if _, ok := a.strategies.Get(name); !ok {
			return fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgs, name)
		}
	}

	return nil
}

func (a *aggregator) emit(sessionID string, kind telemetry.Kind, data map[string]any) {
	event := telemetry.NewEvent(kind)
	event.SessionID = sessionID
	event.Data = data

	a.sink.Emit(event)
}
