package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrMissingField signals that a required field is absent from the
	// input table schema. Fatal: no partial result is produced.
	ErrMissingField = errors.New("required field missing from input table")

	// ErrDegenerateSample signals that a comparative test received a sample
	// too small or too homogeneous to compute a meaningful statistic.
	ErrDegenerateSample = errors.New("degenerate sample")

	// ErrRankDeficientModel signals that the linear model's design matrix
	// has a structurally empty factor-level cell.
	ErrRankDeficientModel = errors.New("rank-deficient model")

	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context

func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

func NewDegenerateSampleError(test, group string, n int) error {
	return fmt.Errorf("%w: test %s, group %q, n=%d", ErrDegenerateSample, test, group, n)
}

func NewRankDeficientModelError(cell string) error {
	return fmt.Errorf("%w: empty cell %s", ErrRankDeficientModel, cell)
}

// Error checking helpers

func IsMissingFieldError(err error) bool {
	return errors.Is(err, ErrMissingField)
}

func IsDegenerateSampleError(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

func IsRankDeficientModelError(err error) bool {
	return errors.Is(err, ErrRankDeficientModel)
}
