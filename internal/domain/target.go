package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
)

var projectMarkers = map[m.Language][]string{
	m.LanguageGo:     {"go.mod"},
	m.LanguagePython: {"pyproject.toml", "setup.cfg", "setup.py", "pytest.ini", "tox.ini", ".git"},
}

// DetectLanguage infers the target language from the test file name.
func DetectLanguage(testFile m.Path) (m.Language, error) {
	name := filepath.Base(string(testFile))

	switch {
	case strings.HasSuffix(name, "_test.go"):
		return m.LanguageGo, nil
	case strings.HasSuffix(name, ".py"):
		return m.LanguagePython, nil
	default:
		return "", fmt.Errorf("%w: cannot infer language of %s", ErrInvalidArgs, testFile)
	}
}

// ResolveTarget reads the test file (and optional source file) and locates the
// project root that is copied into every sandbox. Without a project marker the
// directory of the test file is used.
func ResolveTarget(ctx context.Context, fs adapter.SourceFSAdapter, testFile, sourceFile m.Path) (m.Target, error) {
	language, err := DetectLanguage(testFile)
	if err != nil {
		return m.Target{}, err
	}

	absTest, err := fs.Abs(ctx, testFile)
	if err != nil {
		return m.Target{}, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}

	testCode, err := fs.ReadFile(ctx, absTest)
	if err != nil {
		slog.Error("Failed to read test file", "path", absTest, "error", err)
		return m.Target{}, fmt.Errorf("%w: read test file: %w", ErrInvalidArgs, err)
	}

	target := m.Target{
		Language: language,
		TestFile: absTest,
		TestCode: testCode,
	}

	if sourceFile != "" {
		absSource, err := fs.Abs(ctx, sourceFile)
		if err != nil {
			return m.Target{}, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
		}

		sourceCode, err := fs.ReadFile(ctx, absSource)
		if err != nil {
			slog.Error("Failed to read source file", "path", absSource, "error", err)
			return m.Target{}, fmt.Errorf("%w: read source file: %w", ErrInvalidArgs, err)
		}

		target.SourceFile = absSource
		target.SourceCode = sourceCode
	}

	root, err := fs.FindProjectRoot(ctx, absTest, projectMarkers[language]...)
	if err != nil {
		slog.Debug("No project marker found, using test directory", "testFile", absTest)
		root = m.Path(filepath.Dir(string(absTest)))
	}

	rel, err := fs.RelPath(ctx, root, absTest)
	if err != nil {
		return m.Target{}, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}

	target.ProjectRoot = root
	target.TestRel = m.Path(filepath.ToSlash(string(rel)))

	return target, nil
}
