package adapter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"time"

	m "sieve.dev/pkg/sieve/internal/model"
)

// Toolchain builds the external commands for one target language.
type Toolchain interface {
	Language() m.Language

	// TestCommand runs the target test file in workspace. A non-empty
	// testName restricts the run to that single test.
	TestCommand(workspace string, target m.Target, testName string, timeout time.Duration) Command

	// CoverageCommands measure coverage of the whole test file and leave the
	// report at ReportPath(workspace).
	CoverageCommands(workspace string, target m.Target, timeout time.Duration) []Command

	// ReportPath returns the location of the coverage report in workspace.
	ReportPath(workspace string) string

	// ParseCoverage reads the report produced by CoverageCommands.
	ParseCoverage(ctx context.Context, workspace string) (m.CoverageSnapshot, error)
}

// NewToolchain returns the toolchain for lang. binary overrides the default
// interpreter or compiler driver when non-empty.
func NewToolchain(lang m.Language, binary string) (Toolchain, error) {
	switch lang {
	case m.LanguageGo:
		return NewGoToolchain(binary), nil
	case m.LanguagePython:
		return NewPythonToolchain(binary), nil
	default:
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
}

const (
	goCoverProfile   = ".sieve-cover.out"
	pyCoverageData   = ".sieve-coverage"
	pyCoverageReport = ".sieve-coverage.json"
)

// GoToolchain drives `go test`.
type GoToolchain struct {
	bin string
}

// NewGoToolchain returns a GoToolchain; bin defaults to "go".
func NewGoToolchain(bin string) *GoToolchain {
	if bin == "" {
		bin = "go"
	}

	return &GoToolchain{bin: bin}
}

// Language implements Toolchain.
func (g *GoToolchain) Language() m.Language {
	return m.LanguageGo
}

// TestCommand implements Toolchain.
func (g *GoToolchain) TestCommand(workspace string, target m.Target, testName string, timeout time.Duration) Command {
	args := append([]string{g.bin, "test", "-count=1"}, goTimeoutFlag(timeout)...)
	if testName != "" {
		args = append(args, "-run", "^"+regexp.QuoteMeta(testName)+"$")
	}

	args = append(args, goPackagePattern(target.TestRel))

	return Command{Dir: workspace, Args: args, Env: []string{"GOFLAGS=-mod=mod"}, Timeout: timeout}
}

// CoverageCommands implements Toolchain.
func (g *GoToolchain) CoverageCommands(workspace string, target m.Target, timeout time.Duration) []Command {
	args := append([]string{g.bin, "test", "-count=1"}, goTimeoutFlag(timeout)...)
	args = append(args,
		"-covermode=set",
		"-coverpkg=./...",
		"-coverprofile="+g.ReportPath(workspace),
		goPackagePattern(target.TestRel),
	)

	return []Command{{Dir: workspace, Args: args, Env: []string{"GOFLAGS=-mod=mod"}, Timeout: timeout}}
}

// ReportPath implements Toolchain.
func (g *GoToolchain) ReportPath(workspace string) string {
	return filepath.Join(workspace, goCoverProfile)
}

// ParseCoverage implements Toolchain.
func (g *GoToolchain) ParseCoverage(_ context.Context, workspace string) (m.CoverageSnapshot, error) {
	return ParseGoProfile(g.ReportPath(workspace))
}

// goTimeoutFlag bounds the test binary by the same deadline as its driver.
func goTimeoutFlag(timeout time.Duration) []string {
	if timeout <= 0 {
		return nil
	}

	return []string{"-timeout=" + timeout.String()}
}

// goPackagePattern turns a test file path into the `./dir` pattern of its package.
func goPackagePattern(testRel m.Path) string {
	dir := path.Dir(filepath.ToSlash(string(testRel)))
	if dir == "." {
		return "."
	}

	return "./" + dir
}

// PythonToolchain drives pytest and coverage.py.
type PythonToolchain struct {
	bin string
}

// NewPythonToolchain returns a PythonToolchain; bin defaults to "python3".
func NewPythonToolchain(bin string) *PythonToolchain {
	if bin == "" {
		bin = "python3"
	}

	return &PythonToolchain{bin: bin}
}

// Language implements Toolchain.
func (p *PythonToolchain) Language() m.Language {
	return m.LanguagePython
}

// TestCommand implements Toolchain.
func (p *PythonToolchain) TestCommand(workspace string, target m.Target, testName string, timeout time.Duration) Command {
	selector := filepath.ToSlash(string(target.TestRel))
	if testName != "" {
		selector += "::" + testName
	}

	return Command{
		Dir:     workspace,
		Args:    []string{p.bin, "-m", "pytest", "-q", "-p", "no:cacheprovider", selector},
		Env:     []string{"PYTHONDONTWRITEBYTECODE=1"},
		Timeout: timeout,
	}
}

// CoverageCommands implements Toolchain.
func (p *PythonToolchain) CoverageCommands(workspace string, target m.Target, timeout time.Duration) []Command {
	dataFile := "--data-file=" + filepath.Join(workspace, pyCoverageData)
	env := []string{"PYTHONDONTWRITEBYTECODE=1"}

	return []Command{
		{
			Dir: workspace,
			Args: []string{
				p.bin, "-m", "coverage", "run", dataFile,
				"-m", "pytest", "-q", "-p", "no:cacheprovider",
				filepath.ToSlash(string(target.TestRel)),
			},
			Env:     env,
			Timeout: timeout,
		},
		{
			Dir:     workspace,
			Args:    []string{p.bin, "-m", "coverage", "json", dataFile, "-o", p.ReportPath(workspace)},
			Env:     env,
			Timeout: timeout,
		},
	}
}

// ReportPath implements Toolchain.
func (p *PythonToolchain) ReportPath(workspace string) string {
	return filepath.Join(workspace, pyCoverageReport)
}

// ParseCoverage implements Toolchain.
func (p *PythonToolchain) ParseCoverage(_ context.Context, workspace string) (m.CoverageSnapshot, error) {
	return ParseCoveragePyJSON(p.ReportPath(workspace), workspace)
}
