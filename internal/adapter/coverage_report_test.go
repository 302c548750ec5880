package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "sieve.dev/pkg/sieve/internal/model"
)

func TestParseGoProfile(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "cover.out")

	profile := "mode: set\n" +
		"example.com/calc/calc.go:3.24,5.2 1 1\n" +
		"example.com/calc/calc.go:7.24,8.12 1 0\n" +
		"example.com/calc/calc.go:8.12,10.3 1 1\n" +
		"example.com/calc/other.go:1.1,2.2 1 0\n"
	require.NoError(t, os.WriteFile(report, []byte(profile), 0o600))

	snapshot, err := ParseGoProfile(report)
	require.NoError(t, err)

	want := m.CoverageSnapshot{
		"example.com/calc/calc.go": {3, 4, 5, 8, 9, 10},
	}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGoProfile_Missing(t *testing.T) {
	_, err := ParseGoProfile(filepath.Join(t.TempDir(), "missing.out"))
	assert.Error(t, err)
}

func TestParseCoveragePyJSON(t *testing.T) {
	workspace := t.TempDir()
	report := filepath.Join(workspace, "coverage.json")

	absCalc := filepath.Join(workspace, "pkg", "calc.py")
	data := `{"meta": {"version": "7.4"}, "files": {` +
		`"` + filepath.ToSlash(absCalc) + `": {"executed_lines": [4, 1, 2, 2], "missing_lines": [9]},` +
		`"util.py": {"executed_lines": [1]},` +
		`"empty.py": {"executed_lines": []}}}`
	require.NoError(t, os.WriteFile(report, []byte(data), 0o600))

	snapshot, err := ParseCoveragePyJSON(report, workspace)
	require.NoError(t, err)

	want := m.CoverageSnapshot{
		"pkg/calc.py": {1, 2, 4},
		"util.py":     {1},
	}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCoveragePyJSON_Invalid(t *testing.T) {
	report := filepath.Join(t.TempDir(), "coverage.json")
	require.NoError(t, os.WriteFile(report, []byte("{not json"), 0o600))

	_, err := ParseCoveragePyJSON(report, filepath.Dir(report))
	assert.Error(t, err)
}

func TestRelativeTo(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, "a/b.py", relativeTo(root, filepath.Join(root, "a", "b.py")))
	assert.Equal(t, "a/b.py", relativeTo(root, "a/b.py"))
	assert.Equal(t, "/usr/lib/x.py", relativeTo(root, "/usr/lib/x.py"))
}
