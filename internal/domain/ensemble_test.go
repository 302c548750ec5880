package domain_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sieve.dev/pkg/sieve/internal/adapter"
	adaptermocks "sieve.dev/pkg/sieve/internal/adapter/mocks"
	"sieve.dev/pkg/sieve/internal/domain"
	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

func pyResponse(names ...string) string {
	out := "Here are some tests:\n\n```python\n"
	for _, name := range names {
		out += fmt.Sprintf("def %s():\n    assert True\n\n", name)
	}

	return out + "```\n"
}

func collect(ch <-chan m.Candidate) []m.Candidate {
	var out []m.Candidate
	for candidate := range ch {
		out = append(out, candidate)
	}

	return out
}

func newTestEnsemble(client adapter.GenerationClient, sink telemetry.Sink, opts domain.EnsembleOptions) domain.Ensemble {
	return domain.NewEnsemble(client, adapter.NewPythonCodeAdapter(), domain.NewStrategySet(domain.DefaultStrategies()...), sink, "session-1", opts)
}

func TestEnsemble_Generate(t *testing.T) {
	client := adaptermocks.NewMockGenerationClient(t)
	recorder := &telemetry.Recorder{}

	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.2).Return(pyResponse("test_a", "test_b"), nil).Once()
	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.8).Return(pyResponse("test_c"), nil).Once()

	requests := domain.BuildRequests(m.Target{Language: m.LanguagePython, TestCode: []byte(pyTestFile)}, []string{"extend-test"}, []float64{0.2, 0.8}, true)

	candidates := collect(newTestEnsemble(client, recorder, domain.EnsembleOptions{}).Generate(context.Background(), requests, 2))
	require.Len(t, candidates, 3)

	var (
		names []string
		seqs  = map[uint64]bool{}
	)

	for _, candidate := range candidates {
		names = append(names, candidate.Name)
		seqs[candidate.Seq] = true

		assert.Equal(t, "extend-test", candidate.Strategy)
	}

	sort.Strings(names)
	assert.Equal(t, []string{"test_a", "test_b", "test_c"}, names)
	assert.Len(t, seqs, 3, "sequence ids are unique")
	assert.Len(t, recorder.OfKind(telemetry.KindCandidateGenerated), 3)
}

func TestEnsemble_FailuresAreSkipped(t *testing.T) {
	client := adaptermocks.NewMockGenerationClient(t)
	recorder := &telemetry.Recorder{}

	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.1).Return("", errors.New("provider exploded")).Once()
	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.2).Return("I'm sorry, I can't help with that.", nil).Once()
	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.3).Return("```python\ndef test_broken(:\n```", nil).Once()
	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.4).Return(pyResponse("test_ok"), nil).Once()

	requests := domain.BuildRequests(m.Target{Language: m.LanguagePython}, []string{"extend-test"}, []float64{0.1, 0.2, 0.3, 0.4}, true)

	candidates := collect(newTestEnsemble(client, recorder, domain.EnsembleOptions{}).Generate(context.Background(), requests, 4))

	require.Len(t, candidates, 1)
	assert.Equal(t, "test_ok", candidates[0].Name)
	assert.Len(t, recorder.OfKind(telemetry.KindGenerationFailed), 1)
	assert.Len(t, recorder.OfKind(telemetry.KindGenerationEmpty), 2)
}

func TestEnsemble_PerCallTimeout(t *testing.T) {
	client := adaptermocks.NewMockGenerationClient(t)
	recorder := &telemetry.Recorder{}

	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.1).
		RunAndReturn(func(ctx context.Context, _ adapter.Prompt, _ float64) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}).Once()
	client.EXPECT().Complete(mock.Anything, mock.Anything, 0.2).Return(pyResponse("test_fast"), nil).Once()

	requests := domain.BuildRequests(m.Target{Language: m.LanguagePython}, []string{"extend-test"}, []float64{0.1, 0.2}, true)

	candidates := collect(newTestEnsemble(client, recorder, domain.EnsembleOptions{Timeout: 50 * time.Millisecond}).Generate(context.Background(), requests, 2))

	require.Len(t, candidates, 1)
	assert.Equal(t, "test_fast", candidates[0].Name)

	failed := recorder.OfKind(telemetry.KindGenerationFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Detail, "timed out")
}

func TestEnsemble_ConcurrencyBound(t *testing.T) {
	client := adaptermocks.NewMockGenerationClient(t)

	var active, peak atomic.Int32

	client.EXPECT().Complete(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, adapter.Prompt, float64) (string, error) {
			now := active.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			active.Add(-1)

			return pyResponse("test_x"), nil
		}).Times(12)

	strategies := []string{"extend-coverage", "corner-cases", "extend-test", "statement-complete"}
	requests := domain.BuildRequests(m.Target{Language: m.LanguagePython}, strategies, []float64{0.0, 0.5, 1.0}, true)
	require.Len(t, requests, 12)

	candidates := collect(newTestEnsemble(client, nil, domain.EnsembleOptions{}).Generate(context.Background(), requests, 3))

	assert.Len(t, candidates, 12)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestEnsemble_CancellationClosesStream(t *testing.T) {
	client := adaptermocks.NewMockGenerationClient(t)

	ctx, cancel := context.WithCancel(context.Background())

	client.EXPECT().Complete(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(callCtx context.Context, _ adapter.Prompt, _ float64) (string, error) {
			cancel()
			<-callCtx.Done()

			return "", callCtx.Err()
		}).Maybe()

	requests := domain.BuildRequests(m.Target{Language: m.LanguagePython}, []string{"extend-test"}, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, true)

	done := make(chan []m.Candidate)
	go func() {
		done <- collect(newTestEnsemble(client, nil, domain.EnsembleOptions{}).Generate(ctx, requests, 1))
	}()

	select {
	case candidates := <-done:
		assert.Empty(t, candidates)
	case <-time.After(5 * time.Second):
		t.Fatal("candidate stream was not closed after cancellation")
	}
}

func TestEnsemble_RateLimit(t *testing.T) {
	client := adaptermocks.NewMockGenerationClient(t)
	client.EXPECT().Complete(mock.Anything, mock.Anything, mock.Anything).Return(pyResponse("test_x"), nil).Times(3)

	requests := domain.BuildRequests(m.Target{Language: m.LanguagePython}, []string{"extend-test"}, []float64{0.1, 0.2, 0.3}, true)

	start := time.Now()
	candidates := collect(newTestEnsemble(client, nil, domain.EnsembleOptions{Rate: 20, Burst: 1}).Generate(context.Background(), requests, 3))

	assert.Len(t, candidates, 3)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
