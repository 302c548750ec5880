package domain

import (
	"context"
	"fmt"
	"time"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

// EngineOptions configures the components built by NewEngineFactory.
type EngineOptions struct {
	GenerationTimeout time.Duration
	GenerationRate    float64
	ExecTimeout       time.Duration
	CoverageTimeout   time.Duration
	CoverageSamples   int
	// Binaries overrides the toolchain driver per language, e.g. a virtualenv
	// python.
	Binaries map[m.Language]string
}

// NewEngineFactory wires the local sandbox, coverage, filtration and ensemble
// components for the language of each target.
func NewEngineFactory(
	fsAdapter adapter.SourceFSAdapter,
	testAdapter adapter.TestRunnerAdapter,
	client adapter.GenerationClient,
	strategies *StrategySet,
	sink telemetry.Sink,
	opts EngineOptions,
) EngineFactory {
	return func(_ context.Context, sessionID string, target m.Target, args RunArgs) (Engines, error) {
		codeAdapter, err := adapter.NewCodeAdapter(target.Language)
		if err != nil {
			return Engines{}, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
		}

		toolchain, err := adapter.NewToolchain(target.Language, opts.Binaries[target.Language])
		if err != nil {
			return Engines{}, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
		}

		coverageTimeout := opts.CoverageTimeout
		if coverageTimeout <= 0 {
			coverageTimeout = 4 * opts.ExecTimeout
		}

		sandbox := NewSandbox(fsAdapter, testAdapter, codeAdapter, toolchain, args.FiltrationWorkers)
		coverage := NewCoverageEngine(sandbox, CoverageOptions{
			Samples: opts.CoverageSamples,
			Timeout: coverageTimeout,
		})

		return Engines{
			Code:     codeAdapter,
			Coverage: coverage,
			Filtration: NewFiltration(sandbox, coverage, NewDuplicateDetector(codeAdapter), codeAdapter, sink, FiltrationOptions{
				FlakyRuns:   args.FlakyRuns,
				ExecTimeout: opts.ExecTimeout,
			}),
			Ensemble: NewEnsemble(client, codeAdapter, strategies, sink, sessionID, EnsembleOptions{
				Timeout: opts.GenerationTimeout,
				Rate:    opts.GenerationRate,
			}),
		}, nil
	}
}
