package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
)

const sandboxPattern = "sieve-sandbox-*"

// Sandbox runs a candidate merged into the target test file inside a fresh copy
// of the project. Each call owns its workspace and removes it before
// returning. Test failures are reported through RunResult; errors are either
// cancellations or wrap ErrInfrastructure.
type Sandbox interface {
	// Run executes the whole merged test file.
	Run(ctx context.Context, target m.Target, candidate m.Candidate, timeout time.Duration) (m.RunResult, error)

	// RunOnly executes only the named test of the merged file.
	RunOnly(ctx context.Context, target m.Target, candidate m.Candidate, testName string, timeout time.Duration) (m.RunResult, error)

	// Measure runs the merged file under the coverage tool. A candidate without
	// code measures the original suite. The snapshot is nil when the suite
	// did not run cleanly; the RunResult explains why.
	Measure(ctx context.Context, target m.Target, candidate m.Candidate, timeout time.Duration) (m.CoverageSnapshot, m.RunResult, error)
}

type sandbox struct {
	fsAdapter   adapter.SourceFSAdapter
	testAdapter adapter.TestRunnerAdapter
	codeAdapter adapter.CodeAdapter
	toolchain   adapter.Toolchain
	slots       *semaphore.Weighted
}

// NewSandbox constructs a Sandbox. At most maxProcs subprocesses run at the
// same time across all callers.
func NewSandbox(
	fsAdapter adapter.SourceFSAdapter,
	testAdapter adapter.TestRunnerAdapter,
	codeAdapter adapter.CodeAdapter,
	toolchain adapter.Toolchain,
	maxProcs int,
) Sandbox {
	if maxProcs <= 0 {
		maxProcs = 1
	}

	return &sandbox{
		fsAdapter:   fsAdapter,
		testAdapter: testAdapter,
		codeAdapter: codeAdapter,
		toolchain:   toolchain,
		slots:       semaphore.NewWeighted(int64(maxProcs)),
	}
}

func (s *sandbox) Run(ctx context.Context, target m.Target, candidate m.Candidate, timeout time.Duration) (m.RunResult, error) {
	return s.RunOnly(ctx, target, candidate, "", timeout)
}

func (s *sandbox) RunOnly(ctx context.Context, target m.Target, candidate m.Candidate, testName string, timeout time.Duration) (m.RunResult, error) {
	var result m.RunResult

	err := s.withWorkspace(ctx, target, candidate, func(workspace string) error {
		command := s.toolchain.TestCommand(workspace, target, testName, timeout)

		var runErr error

		result, runErr = s.run(ctx, command)

		return runErr
	})

	return result, err
}

func (s *sandbox) Measure(ctx context.Context, target m.Target, candidate m.Candidate, timeout time.Duration) (m.CoverageSnapshot, m.RunResult, error) {
	var (
		snapshot m.CoverageSnapshot
		result   m.RunResult
	)

	err := s.withWorkspace(ctx, target, candidate, func(workspace string) error {
		for _, command := range s.toolchain.CoverageCommands(workspace, target, timeout) {
			var runErr error

			result, runErr = s.run(ctx, command)
			if runErr != nil {
				return runErr
			}

			if !result.Passed {
				slog.Debug("Coverage command failed", "command", command.String(), "exitCode", result.ExitCode, "timedOut", result.TimedOut)
				return nil
			}
		}

		parsed, parseErr := s.toolchain.ParseCoverage(ctx, workspace)
		if parseErr != nil {
			slog.Warn("Failed to parse coverage report", "workspace", workspace, "error", parseErr)
			result.Passed = false
			result.Output += "\n" + parseErr.Error()

			return nil
		}

		snapshot = parsed

		return nil
	})

	return snapshot, result, err
}

func (s *sandbox) run(ctx context.Context, command adapter.Command) (m.RunResult, error) {
	result, err := s.testAdapter.Run(ctx, command)
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	slog.Error("Failed to run test command", "command", command.String(), "error", err)

	return result, infraError("run test command", err)
}

// withWorkspace prepares a private project copy holding the merged test file
// and removes it on every exit path.
func (s *sandbox) withWorkspace(ctx context.Context, target m.Target, candidate m.Candidate, fn func(workspace string) error) (err error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.slots.Release(1)

	tmpDir, err := s.fsAdapter.CreateTempDir(ctx, sandboxPattern)
	if err != nil {
		slog.Error("Failed to create temp dir", "error", err)
		return infraError("create workspace", err)
	}

	defer func() {
		if cleanupErr := s.cleanupTempDir(ctx, tmpDir); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	if err := s.fsAdapter.CopyDir(ctx, target.ProjectRoot, tmpDir); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		slog.Error("Failed to copy project to temp dir", "projectRoot", target.ProjectRoot, "tmpDir", tmpDir, "error", err)

		return infraError("copy project", err)
	}

	merged := target.TestCode
	if candidate.Code != "" {
		merged, err = s.codeAdapter.Merge(ctx, target.TestFile, target.TestCode, candidate.Code)
		if err != nil {
			slog.Error("Failed to merge candidate", "candidate", candidate.Label(), "error", err)
			return infraError("merge candidate", err)
		}
	}

	testPath := s.fsAdapter.JoinPath(ctx, string(tmpDir), string(target.TestRel))
	if err := s.fsAdapter.WriteFile(ctx, testPath, merged, 0o600); err != nil {
		slog.Error("Failed to write merged test file", "path", testPath, "error", err)
		return infraError("write merged test file", err)
	}

	return fn(string(tmpDir))
}

func (s *sandbox) cleanupTempDir(ctx context.Context, tmpDir m.Path) error {
	if err := s.fsAdapter.RemoveAll(context.WithoutCancel(ctx), tmpDir); err != nil {
		slog.Error("Failed to remove temp dir", "tmpDir", tmpDir, "error", err)
		return infraError("remove workspace", err)
	}

	return nil
}

// isFatal reports whether err must abort the session.
func isFatal(err error) bool {
	return errors.Is(err, ErrInfrastructure) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func describeRun(result m.RunResult) string {
	if result.TimedOut {
		return fmt.Sprintf("timed out after %s", result.Duration.Round(time.Millisecond))
	}

	return fmt.Sprintf("exit code %d: %s", result.ExitCode, tail(result.Output, 5))
}
