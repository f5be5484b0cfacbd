package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrVariableNotFound = fmt.Errorf("%w: variable", ErrNotFound)
	ErrBannerNotFound   = fmt.Errorf("%w: banner variable", ErrNotFound)
	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)

	// Input errors. Anything wrapping ErrFatalInput aborts a pipeline run.
	ErrFatalInput        = errors.New("fatal input error")
	ErrRowCountMismatch  = fmt.Errorf("%w: inconsistent row counts", ErrFatalInput)
	ErrDuplicateVariable = fmt.Errorf("%w: duplicate variable name", ErrFatalInput)
	ErrEmptyCatalog      = fmt.Errorf("%w: dataset has no variables", ErrFatalInput)
	ErrMalformedLabels   = fmt.Errorf("%w: malformed value labels", ErrFatalInput)

	// Pipeline control
	ErrDecisionRequired = errors.New("decision required before the pipeline can continue")
	ErrInvalidDecision  = errors.New("invalid decision record")
)

// Error constructors with context
func NewFatalInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrFatalInput, reason)
}

func NewVariableNotFoundError(name string) error {
	return fmt.Errorf("%w %q", ErrVariableNotFound, name)
}

func NewBannerNotFoundError(name string) error {
	// an unknown banner variable cannot be tabulated at all
	return fmt.Errorf("%w: %w %q", ErrFatalInput, ErrBannerNotFound, name)
}

func NewRowCountError(variable string, got, want int) error {
	return fmt.Errorf("%w: variable %s has %d rows, dataset has %d", ErrRowCountMismatch, variable, got, want)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsFatalInputError(err error) bool {
	return errors.Is(err, ErrFatalInput)
}

func IsDecisionRequired(err error) bool {
	return errors.Is(err, ErrDecisionRequired)
}
