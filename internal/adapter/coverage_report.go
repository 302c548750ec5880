package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/cover"

	m "sieve.dev/pkg/sieve/internal/model"
)

// ParseGoProfile reads a `go test -coverprofile` report. Profile entries are
// keyed by import path, which does not depend on the sandbox location.
func ParseGoProfile(reportPath string) (m.CoverageSnapshot, error) {
	profiles, err := cover.ParseProfiles(reportPath)
	if err != nil {
		return nil, fmt.Errorf("parse cover profile %s: %w", reportPath, err)
	}

	raw := make(map[string][]int, len(profiles))

	for _, profile := range profiles {
		for _, block := range profile.Blocks {
			if block.Count == 0 {
				continue
			}

			for line := block.StartLine; line <= block.EndLine; line++ {
				raw[profile.FileName] = append(raw[profile.FileName], line)
			}
		}
	}

	return m.NewCoverageSnapshot(raw), nil
}

type coveragePyReport struct {
	Files map[string]struct {
		ExecutedLines []int `json:"executed_lines"`
	} `json:"files"`
}

// ParseCoveragePyJSON reads a `coverage json` report and rewrites the file
// names relative to workspace.
func ParseCoveragePyJSON(reportPath, workspace string) (m.CoverageSnapshot, error) {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("read coverage report %s: %w", reportPath, err)
	}

	var report coveragePyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode coverage report %s: %w", reportPath, err)
	}

	raw := make(map[string][]int, len(report.Files))

	for file, entry := range report.Files {
		rel := relativeTo(workspace, file)
		raw[rel] = append(raw[rel], entry.ExecutedLines...)
	}

	return m.NewCoverageSnapshot(raw), nil
}

// relativeTo returns file relative to root using forward slashes. Files
// outside root are returned cleaned but otherwise unchanged.
func relativeTo(root, file string) string {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(filepath.Clean(file))
	}

	for _, base := range candidateRoots(root) {
		rel, err := filepath.Rel(base, file)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(filepath.Clean(file))
}

// candidateRoots includes the symlink-resolved root, since tools report
// resolved paths on systems where the temp dir is a symlink.
func candidateRoots(root string) []string {
	roots := []string{root}

	if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != root {
		roots = append(roots, resolved)
	}

	return roots
}
