package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	m "sieve.dev/pkg/sieve/internal/model"
)

// OutputFormat selects how a session report is rendered.
type OutputFormat string

// Supported output formats.
const (
	FormatDiff OutputFormat = "diff"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatFile OutputFormat = "file"
)

// OutputFormats lists every supported format.
var OutputFormats = []OutputFormat{FormatDiff, FormatJSON, FormatYAML, FormatFile}

// ParseOutputFormat validates a user supplied format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	for _, format := range OutputFormats {
		if string(format) == name {
			return format, nil
		}
	}

	return "", fmt.Errorf("unknown output format %q", name)
}

// ReportWriter renders the outcome of a session.
type ReportWriter interface {
	// Write renders report to out. FormatFile rewrites the target test file
	// unless dryRun is set, in which case a diff is printed instead.
	Write(ctx context.Context, out io.Writer, format OutputFormat, report m.Report, dryRun bool) error
}

// LocalReportWriter writes reports to an io.Writer and the local file system.
type LocalReportWriter struct {
	fs SourceFSAdapter
}

// NewLocalReportWriter constructs a LocalReportWriter.
func NewLocalReportWriter(fs SourceFSAdapter) *LocalReportWriter {
	return &LocalReportWriter{fs: fs}
}

// Write implements ReportWriter.
func (w *LocalReportWriter) Write(ctx context.Context, out io.Writer, format OutputFormat, report m.Report, dryRun bool) error {
	switch format {
	case FormatDiff, "":
		return writeDiff(out, report)
	case FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report)
	case FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)

		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}

		return encoder.Close()
	case FormatFile:
		if dryRun {
			return writeDiff(out, report)
		}

		return w.writeFile(ctx, out, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (w *LocalReportWriter) writeFile(ctx context.Context, out io.Writer, report m.Report) error {
	if len(report.Survivors) == 0 {
		_, err := fmt.Fprintf(out, "No surviving tests; %s left unchanged\n", report.TestFile)
		return err
	}

	if err := w.fs.WriteFile(ctx, report.TestFile, report.Improved, 0o644); err != nil {
		return fmt.Errorf("write improved test file: %w", err)
	}

	_, err := fmt.Fprintf(out, "Added %d test(s) to %s\n", len(report.Survivors), report.TestFile)

	return err
}

func writeDiff(out io.Writer, report m.Report) error {
	name := filepath.Base(string(report.TestFile))

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(report.Original)),
		B:        difflib.SplitLines(string(report.Improved)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("render diff: %w", err)
	}

	_, err = io.WriteString(out, diff)

	return err
}
