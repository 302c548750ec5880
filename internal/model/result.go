package model

import (
	"time"
)

// RunResult is the outcome of one sandboxed test command.
type RunResult struct {
	Passed   bool
	ExitCode int
	TimedOut bool
	Output   string
	Duration time.Duration
}

// TestCaseResult is produced only for survivors; Delta is never empty.
type TestCaseResult struct {
	Candidate         Candidate        `json:"candidate" yaml:"candidate"`
	Delta             CoverageSnapshot `json:"coverage_delta" yaml:"coverage_delta"`
	LinesAdded        int              `json:"lines_added" yaml:"lines_added"`
	FilesNewlyCovered []string         `json:"files_newly_covered,omitempty" yaml:"files_newly_covered,omitempty"`
}

// NewTestCaseResult computes the derived counters of a survivor.
func NewTestCaseResult(candidate Candidate, baseline, delta CoverageSnapshot) TestCaseResult {
	var newlyCovered []string

	for _, file := range delta.Files() {
		if len(baseline[file]) == 0 {
			newlyCovered = append(newlyCovered, file)
		}
	}

	return TestCaseResult{
		Candidate:         candidate,
		Delta:             delta,
		LinesAdded:        delta.LineCount(),
		FilesNewlyCovered: newlyCovered,
	}
}

// Rejection records a discarded candidate for telemetry.
type Rejection struct {
	SessionID string    `json:"session_id"`
	Candidate Candidate `json:"candidate"`
	Stage     Stage     `json:"stage"`
	Reason    Reason    `json:"reason"`
	Detail    string    `json:"detail,omitempty"`
}

// Report is the outcome of one session.
type Report struct {
	SessionID     string           `json:"session_id" yaml:"session_id"`
	TestFile      Path             `json:"test_file" yaml:"test_file"`
	Language      Language         `json:"language" yaml:"language"`
	BaselineLines int              `json:"baseline_lines" yaml:"baseline_lines"`
	Requests      int              `json:"requests" yaml:"requests"`
	Generated     int              `json:"generated" yaml:"generated"`
	Survivors     []TestCaseResult `json:"survivors" yaml:"survivors"`
	RejectedBy    map[Stage]int    `json:"rejected_by_stage" yaml:"rejected_by_stage"`
	RejectedFor   map[Reason]int   `json:"rejected_by_reason" yaml:"rejected_by_reason"`
	StartedAt     time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time        `json:"finished_at" yaml:"finished_at"`
	// Original and Improved hold the test file before and after merging the
	// survivors.
	Original []byte `json:"-" yaml:"-"`
	Improved []byte `json:"-" yaml:"-"`
}

// NewReport returns an empty report with initialized counters.
func NewReport(sessionID string, target Target) Report {
	return Report{
		SessionID:   sessionID,
		TestFile:    target.TestFile,
		Language:    target.Language,
		Survivors:   []TestCaseResult{},
		RejectedBy:  map[Stage]int{},
		RejectedFor: map[Reason]int{},
		StartedAt:   time.Now(),
		Original:    target.TestCode,
		Improved:    target.TestCode,
	}
}

// Rejected returns the total number of rejected candidates.
func (r Report) Rejected() int {
	total := 0
	for _, count := range r.RejectedBy {
		total += count
	}

	return total
}
