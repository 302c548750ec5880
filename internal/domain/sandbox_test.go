package domain_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
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
)

const pyTestFile = "def test_add():\n    assert add(1, 2) == 3\n"

// newPythonProject lays out a tiny pytest project and returns its target.
func newPythonProject(t *testing.T) m.Target {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project]\nname = \"calc\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "calc.py"), []byte("def add(a, b):\n    return a + b\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tests"), 0o750))

	testFile := filepath.Join(root, "tests", "test_calc.py")
	require.NoError(t, os.WriteFile(testFile, []byte(pyTestFile), 0o600))

	return m.Target{
		Language:    m.LanguagePython,
		ProjectRoot: m.Path(root),
		TestFile:    m.Path(testFile),
		TestRel:     "tests/test_calc.py",
		TestCode:    []byte(pyTestFile),
	}
}

func newPythonSandbox(runner adapter.TestRunnerAdapter, fs adapter.SourceFSAdapter, maxProcs int) domain.Sandbox {
	return domain.NewSandbox(fs, runner, adapter.NewPythonCodeAdapter(), adapter.NewPythonToolchain(""), maxProcs)
}

var candidateB = m.Candidate{Seq: 1, Name: "test_b", Code: "def test_b():\n    assert add(2, 2) == 4"}

func TestSandbox_RunOnly_MergesCandidateAndCleansUp(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	var workspace string

	runner.EXPECT().Run(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, command adapter.Command) (m.RunResult, error) {
			workspace = command.Dir

			merged, err := os.ReadFile(filepath.Join(command.Dir, "tests", "test_calc.py"))
			require.NoError(t, err)
			assert.Contains(t, string(merged), "def test_add():")
			assert.Contains(t, string(merged), "def test_b():")

			_, err = os.Stat(filepath.Join(command.Dir, "calc.py"))
			require.NoError(t, err)

			assert.Equal(t, "tests/test_calc.py::test_b", command.Args[len(command.Args)-1])
			assert.Equal(t, time.Second, command.Timeout)

			return m.RunResult{Passed: true}, nil
		}).Once()

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

	result, err := sandbox.RunOnly(context.Background(), target, candidateB, "test_b", time.Second)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	require.NotEmpty(t, workspace)
	_, err = os.Stat(workspace)
	assert.True(t, os.IsNotExist(err), "workspace %s must be removed", workspace)

	original, err := os.ReadFile(string(target.TestFile))
	require.NoError(t, err)
	assert.Equal(t, pyTestFile, string(original))
}

func TestSandbox_Run_FailureIsNotAnError(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	var workspace string

	runner.EXPECT().Run(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, command adapter.Command) (m.RunResult, error) {
			workspace = command.Dir
			assert.Equal(t, "tests/test_calc.py", command.Args[len(command.Args)-1])

			return m.RunResult{Passed: false, ExitCode: 1, Output: "AssertionError"}, nil
		}).Once()

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

	result, err := sandbox.Run(context.Background(), target, candidateB, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.ExitCode)

	_, err = os.Stat(workspace)
	assert.True(t, os.IsNotExist(err))
}

func TestSandbox_RunnerUnavailableIsInfrastructure(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	var workspace string

	runner.EXPECT().Run(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, command adapter.Command) (m.RunResult, error) {
			workspace = command.Dir
			return m.RunResult{}, adapter.ErrRunnerUnavailable
		}).Once()

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

	_, err := sandbox.RunOnly(context.Background(), target, candidateB, "test_b", time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
	assert.ErrorIs(t, err, adapter.ErrRunnerUnavailable)

	_, statErr := os.Stat(workspace)
	assert.True(t, os.IsNotExist(statErr))
}

type failingTempDirFS struct {
	*adapter.LocalSourceFSAdapter
}

func (failingTempDirFS) CreateTempDir(context.Context, string) (m.Path, error) {
	return "", errors.New("disk full")
}

type failingRemoveFS struct {
	*adapter.LocalSourceFSAdapter
	removed atomic.Int32
}

func (f *failingRemoveFS) RemoveAll(ctx context.Context, path m.Path) error {
	f.removed.Add(1)
	_ = f.LocalSourceFSAdapter.RemoveAll(ctx, path)

	return errors.New("device busy")
}

func TestSandbox_WorkspaceFailuresAreInfrastructure(t *testing.T) {
	target := newPythonProject(t)

	t.Run("create", func(t *testing.T) {
		runner := adaptermocks.NewMockTestRunnerAdapter(t)
		sandbox := newPythonSandbox(runner, failingTempDirFS{adapter.NewLocalSourceFSAdapter()}, 1)

		_, err := sandbox.Run(context.Background(), target, candidateB, time.Second)
		assert.ErrorIs(t, err, domain.ErrInfrastructure)
	})

	t.Run("cleanup", func(t *testing.T) {
		runner := adaptermocks.NewMockTestRunnerAdapter(t)
		runner.EXPECT().Run(mock.Anything, mock.Anything).Return(m.RunResult{Passed: true}, nil).Once()

		fs := &failingRemoveFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
		sandbox := newPythonSandbox(runner, fs, 1)

		_, err := sandbox.Run(context.Background(), target, candidateB, time.Second)
		assert.ErrorIs(t, err, domain.ErrInfrastructure)
		assert.Equal(t, int32(1), fs.removed.Load())
	})

	t.Run("copy", func(t *testing.T) {
		runner := adaptermocks.NewMockTestRunnerAdapter(t)
		sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

		missing := target
		missing.ProjectRoot = m.Path(filepath.Join(t.TempDir(), "gone"))

		_, err := sandbox.Run(context.Background(), missing, candidateB, time.Second)
		assert.ErrorIs(t, err, domain.ErrInfrastructure)
	})
}

func TestSandbox_Measure(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	runner.EXPECT().Run(mock.Anything, mock.MatchedBy(func(c adapter.Command) bool {
		return containsArg(c.Args, "run")
	})).Return(m.RunResult{Passed: true}, nil).Once()

	runner.EXPECT().Run(mock.Anything, mock.MatchedBy(func(c adapter.Command) bool {
		return containsArg(c.Args, "json")
	})).RunAndReturn(func(_ context.Context, command adapter.Command) (m.RunResult, error) {
		report := `{"files": {"calc.py": {"executed_lines": [1, 2]}, "tests/test_calc.py": {"executed_lines": [1, 2, 5]}}}`
		require.NoError(t, os.WriteFile(filepath.Join(command.Dir, ".sieve-coverage.json"), []byte(report), 0o600))

		return m.RunResult{Passed: true}, nil
	}).Once()

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

	snapshot, result, err := sandbox.Measure(context.Background(), target, candidateB, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, m.CoverageSnapshot{"calc.py": {1, 2}, "tests/test_calc.py": {1, 2, 5}}, snapshot)
}

func TestSandbox_Measure_FailingSuite(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	runner.EXPECT().Run(mock.Anything, mock.Anything).Return(m.RunResult{Passed: false, ExitCode: 1}, nil).Once()

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

	snapshot, result, err := sandbox.Measure(context.Background(), target, m.Candidate{}, time.Second)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
	assert.False(t, result.Passed)
}

func TestSandbox_ConcurrencyBound(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	var active, peak atomic.Int32

	runner.EXPECT().Run(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, adapter.Command) (m.RunResult, error) {
			now := active.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}

			time.Sleep(20 * time.Millisecond)
			active.Add(-1)

			return m.RunResult{Passed: true}, nil
		}).Times(8)

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 2)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := sandbox.RunOnly(context.Background(), target, candidateB, "test_b", time.Second)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestSandbox_Cancelled(t *testing.T) {
	target := newPythonProject(t)
	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sandbox := newPythonSandbox(runner, adapter.NewLocalSourceFSAdapter(), 1)

	_, err := sandbox.RunOnly(ctx, target, candidateB, "test_b", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrInfrastructure)
}

func containsArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}

	return false
}
