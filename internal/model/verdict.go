package model

import "fmt"

// Stage is one step of the filtration pipeline.
type Stage string

const (
	// StageSyntax checks the candidate parses as a standalone function.
	StageSyntax Stage = "Syntax"
	// StageExecution runs the candidate once.
	StageExecution Stage = "Execution"
	// StageFlakiness re-runs the candidate several times.
	StageFlakiness Stage = "Flakiness"
	// StageCoverageDelta requires newly covered lines.
	StageCoverageDelta Stage = "CoverageDelta"
	// StageDuplicate rejects structurally identical candidates.
	StageDuplicate Stage = "Duplicate"
	// StageSurvived is the terminal state of an accepted candidate.
	StageSurvived Stage = "Survived"
)

// Stages lists the filtration stages in execution order.
var Stages = []Stage{StageSyntax, StageExecution, StageFlakiness, StageCoverageDelta, StageDuplicate}

// Reason classifies a rejection.
type Reason string

// Rejection reasons.
const (
	ReasonNone             Reason = ""
	ReasonSyntaxInvalid    Reason = "syntax-invalid"
	ReasonExecutionFailed  Reason = "execution-failed"
	ReasonExecutionTimeout Reason = "execution-timeout"
	ReasonFlaky            Reason = "flaky"
	ReasonNoNewCoverage    Reason = "no-new-coverage"
	// ReasonCoverageUnstable means the measurement was bad, not the candidate.
	ReasonCoverageUnstable Reason = "coverage-unstable"
	// ReasonMergedSuiteFailed means the candidate passes alone but the suite
	// with it merged fails every coverage run.
	ReasonMergedSuiteFailed Reason = "merged-suite-failed"
	ReasonDuplicate         Reason = "duplicate"
	ReasonNormalizeFailed   Reason = "normalize-failed"
)

// VerdictStatus is the tag of a StageVerdict.
type VerdictStatus int

const (
	// Passed means the candidate survived every stage.
	Passed VerdictStatus = iota
	// Rejected means a stage refused the candidate.
	Rejected
)

func (s VerdictStatus) String() string {
	switch s {
	case Passed:
		return "passed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// StageVerdict is the single outcome of one filtration run.
type StageVerdict struct {
	Status VerdictStatus
	Stage  Stage
	Reason Reason
	Detail string
}

// PassedVerdict returns the verdict of a survivor.
func PassedVerdict() StageVerdict {
	return StageVerdict{Status: Passed, Stage: StageSurvived}
}

// RejectedAt returns a rejection at the given stage.
func RejectedAt(stage Stage, reason Reason, detail string) StageVerdict {
	return StageVerdict{Status: Rejected, Stage: stage, Reason: reason, Detail: detail}
}

// IsPassed reports whether the verdict is Passed.
func (v StageVerdict) IsPassed() bool {
	return v.Status == Passed
}

func (v StageVerdict) String() string {
	if v.IsPassed() {
		return string(StageSurvived)
	}

	if v.Detail == "" {
		return fmt.Sprintf("RejectedAt(%s, %s)", v.Stage, v.Reason)
	}

	return fmt.Sprintf("RejectedAt(%s, %s: %s)", v.Stage, v.Reason, v.Detail)
}
