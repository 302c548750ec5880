// Package model defines the data structures shared by the filtration engine.
package model

// Path represents a file system path.
type Path string

// Language identifies the toolchain a target test file belongs to.
type Language string

const (
	// LanguageGo targets *_test.go files executed with `go test`.
	LanguageGo Language = "go"
	// LanguagePython targets pytest files executed with `python -m pytest`.
	LanguagePython Language = "python"
)

// Target is the test file being improved, resolved once per run.
type Target struct {
	Language    Language
	ProjectRoot Path
	// TestFile and SourceFile are absolute paths inside ProjectRoot.
	TestFile   Path
	SourceFile Path
	// TestRel is TestFile relative to ProjectRoot.
	TestRel    Path
	TestCode   []byte
	SourceCode []byte
}

// HasSource reports whether a source-under-test was supplied.
func (t Target) HasSource() bool {
	return t.SourceFile != "" && len(t.SourceCode) > 0
}
