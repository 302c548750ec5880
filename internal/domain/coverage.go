package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	m "sieve.dev/pkg/sieve/internal/model"
)

// CoverageEngine measures covered lines through the sandbox.
type CoverageEngine interface {
	// Baseline measures the unmodified suite. Failing to measure it is an
	// infrastructure error.
	Baseline(ctx context.Context, target m.Target) (m.CoverageSnapshot, error)

	// WithCandidate measures the suite with candidate merged in. A suite that
	// fails every sample of an attempt returns an error wrapping
	// ErrMergedSuiteFailed. Samples that still disagree, or mix passing and
	// failing runs, after the last attempt return ErrCoverageUnstable.
	WithCandidate(ctx context.Context, target m.Target, candidate m.Candidate) (m.CoverageSnapshot, error)

	// Delta returns the lines covered by with and not by base.
	Delta(base, with m.CoverageSnapshot) m.CoverageSnapshot
}

// CoverageOptions tunes measurement.
type CoverageOptions struct {
	// Samples is the number of measurements that must agree per attempt.
	Samples int
	// Attempts is the number of sampling rounds before giving up.
	Attempts int
	Timeout  time.Duration
}

type coverageEngine struct {
	Sandbox
	opts CoverageOptions
}

// NewCoverageEngine constructs a CoverageEngine on top of sandbox.
func NewCoverageEngine(sandbox Sandbox, opts CoverageOptions) CoverageEngine {
	if opts.Samples <= 0 {
		opts.Samples = 2
	}

	if opts.Attempts <= 0 {
		opts.Attempts = 2
	}

	return &coverageEngine{Sandbox: sandbox, opts: opts}
}

func (c *coverageEngine) Baseline(ctx context.Context, target m.Target) (m.CoverageSnapshot, error) {
	snapshot, result, err := c.Measure(ctx, target, m.Candidate{}, c.opts.Timeout)
	if err != nil {
		return nil, err
	}

	if snapshot == nil {
		slog.Error("Baseline coverage failed", "testFile", target.TestFile, "exitCode", result.ExitCode, "timedOut", result.TimedOut)
		return nil, fmt.Errorf("%w: baseline suite does not run: %s", ErrInfrastructure, describeRun(result))
	}

	return exclude(snapshot, target), nil
}

func (c *coverageEngine) WithCandidate(ctx context.Context, target m.Target, candidate m.Candidate) (m.CoverageSnapshot, error) {
	for attempt := 1; attempt <= c.opts.Attempts; attempt++ {
		samples, failed, err := c.sample(ctx, target, candidate)
		if err != nil {
			return nil, err
		}

		switch {
		case len(samples) == 0:
			return nil, fmt.Errorf("%w: %s", ErrMergedSuiteFailed, describeRun(failed[len(failed)-1]))
		case len(failed) == 0 && agree(samples):
			return samples[0], nil
		}

		slog.Debug("Coverage samples disagree", "candidate", candidate.Label(), "attempt", attempt, "failedSamples", len(failed))
	}

	return nil, fmt.Errorf("%w: %d samples disagreed in %d attempts", ErrCoverageUnstable, c.opts.Samples, c.opts.Attempts)
}

// sample measures the merged suite c.opts.Samples times. Runs that produced
// no snapshot are returned in failed and left out of samples.
func (c *coverageEngine) sample(ctx context.Context, target m.Target, candidate m.Candidate) (samples []m.CoverageSnapshot, failed []m.RunResult, err error) {
	for i := 0; i < c.opts.Samples; i++ {
		snapshot, result, err := c.Measure(ctx, target, candidate, c.opts.Timeout)
		if err != nil {
			return nil, nil, err
		}

		if snapshot == nil {
			failed = append(failed, result)
			continue
		}

		samples = append(samples, exclude(snapshot, target))
	}

	return samples, failed, nil
}

func (c *coverageEngine) Delta(base, with m.CoverageSnapshot) m.CoverageSnapshot {
	return with.Diff(base)
}

func agree(samples []m.CoverageSnapshot) bool {
	for _, sample := range samples[1:] {
		if !sample.Equal(samples[0]) {
			return false
		}
	}

	return true
}

// exclude drops the test file itself so a candidate never covers its own body.
func exclude(snapshot m.CoverageSnapshot, target m.Target) m.CoverageSnapshot {
	return snapshot.Without(string(target.TestRel), string(target.TestFile))
}
