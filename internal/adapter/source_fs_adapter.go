// Package adapter contains the infrastructure adapters of the sieve CLI: the
// filesystem, the external test runner, the language code adapters and the
// generation clients.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	m "sieve.dev/pkg/sieve/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when preparing sandboxes. It intentionally hides direct `os`
// access so the workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Abs returns an absolute representation of path.
	Abs(ctx context.Context, path m.Path) (m.Path, error)

	// FindProjectRoot walks up from startPath until a directory holding one of
	// the marker files is found.
	FindProjectRoot(ctx context.Context, startPath m.Path, markers ...string) (m.Path, error)

	// CreateTempDir creates a temporary directory for a sandbox.
	CreateTempDir(ctx context.Context, pattern string) (m.Path, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(ctx context.Context, path m.Path) error

	// CopyDir recursively copies a directory tree.
	CopyDir(ctx context.Context, src, dst m.Path) error

	// WriteFile writes content to a file with the given permissions.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// ErrProjectRootNotFound is returned when no marker file exists above a path.
var ErrProjectRootNotFound = errors.New("project root not found")

// skippedDirs are never copied into a sandbox.
var skippedDirs = map[string]struct{}{
	".git":          {},
	"vendor":        {},
	"node_modules":  {},
	"__pycache__":   {},
	".pytest_cache": {},
	".venv":         {},
	".mypy_cache":   {},
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the domain.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(_ context.Context, path m.Path) ([]byte, error) {
	// #nosec G304 - path is a user supplied test or source file
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(_ context.Context, path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Abs returns the absolute form of path.
func (a *LocalSourceFSAdapter) Abs(_ context.Context, path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// FindProjectRoot searches for one of the marker files walking up the directory tree.
func (a *LocalSourceFSAdapter) FindProjectRoot(ctx context.Context, startPath m.Path, markers ...string) (m.Path, error) {
	dir := filepath.Dir(string(startPath))

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return m.Path(dir), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: none of %v above %s", ErrProjectRootNotFound, markers, startPath)
		}

		dir = parent
	}
}

// CreateTempDir creates a temporary directory for a sandbox.
func (a *LocalSourceFSAdapter) CreateTempDir(_ context.Context, pattern string) (m.Path, error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(_ context.Context, path m.Path) error {
	return os.RemoveAll(string(path))
}

// CopyDir recursively copies a directory tree.
func (a *LocalSourceFSAdapter) CopyDir(ctx context.Context, src, dst m.Path) error {
	return filepath.Walk(string(src), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, err := filepath.Rel(string(src), path)
		if err != nil {
			return err
		}

		if info.IsDir() && relPath != "." {
			if _, skip := skippedDirs[filepath.Base(path)]; skip {
				return filepath.SkipDir
			}
		}

		targetPath := filepath.Join(string(dst), relPath)

		switch {
		case info.IsDir():
			return os.MkdirAll(targetPath, info.Mode().Perm()|0o700)
		case info.Mode()&os.ModeSymlink != 0:
			return a.copySymlink(path, targetPath)
		case !info.Mode().IsRegular():
			return nil
		default:
			return a.copyFile(path, targetPath, info.Mode())
		}
	})
}

func (a *LocalSourceFSAdapter) copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}

	return os.Symlink(link, dst)
}

// copyFile copies a single file.
func (a *LocalSourceFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is internal project file path, not user input
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is internal destination path, not user input
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return os.Chmod(dst, mode)
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(_ context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
