package model

import "fmt"

// GenerationRequest is one work item of the ensemble matrix.
type GenerationRequest struct {
	Strategy    string
	Temperature float64
	Language    Language
	TestCode    string
	SourceCode  string
}

// Key identifies the request in logs and telemetry.
func (r GenerationRequest) Key() string {
	return fmt.Sprintf("%s@%.2f", r.Strategy, r.Temperature)
}

// Candidate is one generated test function that has not been validated yet.
type Candidate struct {
	Seq         uint64  `json:"seq" yaml:"seq"`
	Name        string  `json:"name" yaml:"name"`
	Code        string  `json:"code" yaml:"code"`
	Strategy    string  `json:"strategy" yaml:"strategy"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// Label is a short human readable identifier.
func (c Candidate) Label() string {
	if c.Name == "" {
		return fmt.Sprintf("#%d", c.Seq)
	}

	return fmt.Sprintf("#%d %s", c.Seq, c.Name)
}
