package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	m "sieve.dev/pkg/sieve/internal/model"
)

// ErrRunnerUnavailable reports that the external tool could not be started.
var ErrRunnerUnavailable = errors.New("test runner unavailable")

// Command is one external tool invocation inside a sandbox.
type Command struct {
	Dir     string
	Args    []string
	Env     []string
	Timeout time.Duration
}

func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// TestRunnerAdapter abstracts test execution for the sandbox.
type TestRunnerAdapter interface {
	// Run executes the command and captures combined stdout/stderr. A failing
	// or timed out test is reported through RunResult; an error is returned only
	// when the tool cannot be started or the caller's context is cancelled.
	Run(ctx context.Context, command Command) (m.RunResult, error)
}

// LocalTestRunnerAdapter provides a concrete implementation using os/exec.
type LocalTestRunnerAdapter struct {
	timeout   time.Duration
	waitDelay time.Duration
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter with default 30s timeout.
func NewLocalTestRunnerAdapter() *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{
		timeout:   30 * time.Second,
		waitDelay: 5 * time.Second,
	}
}

// Run executes command with a hard timeout.
func (a *LocalTestRunnerAdapter) Run(ctx context.Context, command Command) (m.RunResult, error) {
	if len(command.Args) == 0 {
		return m.RunResult{}, fmt.Errorf("%w: empty command", ErrRunnerUnavailable)
	}

	timeout := command.Timeout
	if timeout <= 0 {
		timeout = a.timeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 - the command comes from the language toolchain configuration
	cmd := exec.CommandContext(runCtx, command.Args[0], command.Args[1:]...)
	cmd.Dir = command.Dir
	cmd.Env = append(os.Environ(), command.Env...)
	cmd.WaitDelay = a.waitDelay
	killProcessGroup(cmd)

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()

	result := m.RunResult{
		Output:   output.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		result.Passed = true
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1

		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, fmt.Errorf("%w: %s: %w", ErrRunnerUnavailable, command.Args[0], err)
}
