package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInfrastructure marks failures of the environment rather than of a
	// candidate: workspaces that cannot be created or removed, missing tools,
	// a baseline suite that does not run. They abort the session.
	ErrInfrastructure = errors.New("infrastructure failure")

	// ErrInvalidArgs reports unusable session arguments.
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrCoverageUnstable reports a coverage measurement that could not be
	// trusted for one candidate.
	ErrCoverageUnstable = errors.New("coverage measurement unstable")

	// ErrMergedSuiteFailed reports a merged suite that fails every coverage
	// sample of an attempt.
	ErrMergedSuiteFailed = errors.New("merged suite failed")
)

func infraError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInfrastructure, err)
}
