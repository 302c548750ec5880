package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

// Ensemble turns generation requests into a stream of candidates.
type Ensemble interface {
	// Generate runs at most limit requests at a time. The returned channel is
	// closed once every request finished or ctx is cancelled. Failed requests
	// are logged and skipped.
	Generate(ctx context.Context, requests []m.GenerationRequest, limit int) <-chan m.Candidate
}

// EnsembleOptions tunes the generation calls.
type EnsembleOptions struct {
	// Timeout bounds every single generation call.
	Timeout time.Duration
	// Rate caps generation calls per second; zero disables the limit.
	Rate  float64
	Burst int
}

type ensemble struct {
	client      adapter.GenerationClient
	codeAdapter adapter.CodeAdapter
	strategies  *StrategySet
	limiter     *rate.Limiter
	sink        telemetry.Sink
	sessionID   string
	timeout     time.Duration
	seq         atomic.Uint64
}

// NewEnsemble constructs an Ensemble.
func NewEnsemble(
	client adapter.GenerationClient,
	codeAdapter adapter.CodeAdapter,
	strategies *StrategySet,
	sink telemetry.Sink,
	sessionID string,
	opts EnsembleOptions,
) Ensemble {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	if sink == nil {
		sink = telemetry.Discard
	}

	return &ensemble{
		client:      client,
		codeAdapter: codeAdapter,
		strategies:  strategies,
		limiter:     limiter,
		sink:        sink,
		sessionID:   sessionID,
		timeout:     opts.Timeout,
	}
}

func (e *ensemble) Generate(ctx context.Context, requests []m.GenerationRequest, limit int) <-chan m.Candidate {
	if limit <= 0 {
		limit = 1
	}

	ch := make(chan m.Candidate, limit)

	go func() {
		defer close(ch)

		var group errgroup.Group
		group.SetLimit(limit)

		for _, req := range requests {
			if ctx.Err() != nil {
				slog.Debug("Generation cancelled")
				break
			}

			group.Go(func() error {
				e.generate(ctx, req, ch)
				return nil
			})
		}

		_ = group.Wait()
	}()

	return ch
}

// generate handles one request. Every failure stays local to the request.
func (e *ensemble) generate(ctx context.Context, req m.GenerationRequest, out chan<- m.Candidate) {
	if err := e.limiter.Wait(ctx); err != nil {
		return
	}

	strategy, ok := e.strategies.Get(req.Strategy)
	if !ok {
		e.fail(req, fmt.Errorf("unknown strategy %q", req.Strategy))
		return
	}

	prompt, err := strategy.Render(req)
	if err != nil {
		e.fail(req, err)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()

	response, err := e.client.Complete(callCtx, prompt, req.Temperature)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("generation timed out after %s: %w", e.timeout, err)
		}

		e.fail(req, err)

		return
	}

	functions := e.codeAdapter.ExtractFunctions(ctx, response)
	if len(functions) == 0 {
		slog.Info("Generation produced no test function", "request", req.Key())
		e.emit(telemetry.NewEvent(telemetry.KindGenerationEmpty), req, "", time.Since(start))

		return
	}

	slog.Debug("Generation succeeded", "request", req.Key(), "functions", len(functions), "duration", time.Since(start))

	for _, code := range functions {
		name, _ := e.codeAdapter.CheckFunction(ctx, code)

		candidate := m.Candidate{
			Seq:         e.seq.Add(1),
			Name:        name,
			Code:        code,
			Strategy:    req.Strategy,
			Temperature: req.Temperature,
		}

		select {
		case <-ctx.Done():
			return
		case out <- candidate:
			e.sink.Emit(e.stamp(telemetry.NewEvent(telemetry.KindCandidateGenerated).ForCandidate(candidate)))
		}
	}
}

func (e *ensemble) fail(req m.GenerationRequest, err error) {
	slog.Warn("Generation failed", "request", req.Key(), "error", err)
	e.emit(telemetry.NewEvent(telemetry.KindGenerationFailed), req, err.Error(), 0)
}

func (e *ensemble) emit(event telemetry.Event, req m.GenerationRequest, detail string, elapsed time.Duration) {
	event.Strategy = req.Strategy
	event.Temperature = req.Temperature
	event.Detail = detail
	event.Duration = elapsed

	e.sink.Emit(e.stamp(event))
}

func (e *ensemble) stamp(event telemetry.Event) telemetry.Event {
	event.SessionID = e.sessionID
	return event
}
