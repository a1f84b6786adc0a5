package transient

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := registry.Resolve("missing")
//	if errors.Is(err, transient.ErrInvalidArgument) {
//	    // caller asked for something that does not exist
//	}
var (
	// ErrInvalidArgument indicates malformed input: negative counts or intervals,
	// a nil collaborator or an explicitly requested strategy that does not exist.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation indicates an operation that cannot be performed in the current state.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrStrategyNotFound indicates a strategy name missing from a registry.
	ErrStrategyNotFound = fmt.Errorf("%w: strategy not found", ErrInvalidArgument)

	// ErrNoDefaultStrategy indicates that no name was given and the registry has no usable default.
	ErrNoDefaultStrategy = fmt.Errorf("%w: no default strategy", ErrInvalidOperation)

	// ErrRegistryNotSet indicates that the process-wide default registry was never initialized.
	ErrRegistryNotSet = fmt.Errorf("%w: default registry not set", ErrInvalidOperation)

	// ErrRegistryAlreadySet indicates a second guarded attempt to set the default registry.
	ErrRegistryAlreadySet = fmt.Errorf("%w: default registry already set", ErrInvalidOperation)

	// ErrInvalidConfig indicates the strategy configuration document is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the resource could not be acquired.
	ErrConnectionFailed = errors.New("connection failed")
)

// RetryLimitExceededError stops the attempt loop immediately when returned
// (or wrapped) by an operation. It never reaches the caller itself: the
// executor surfaces Err when set, and an *AbortedError otherwise.
type RetryLimitExceededError struct {
	Err error
}

// RetryLimitExceeded wraps err so that the executor gives up without consulting
// the classifier or the backoff strategy. err may be nil.
func RetryLimitExceeded(err error) error {
	return &RetryLimitExceededError{Err: err}
}

func (e *RetryLimitExceededError) Error() string {
	if e.Err == nil {
		return "retry limit exceeded"
	}
	return fmt.Sprintf("retry limit exceeded: %v", e.Err)
}

func (e *RetryLimitExceededError) Unwrap() error {
	return e.Err
}

// AbortedError reports a call ended by a RetryLimitExceededError without an inner error.
// It matches context.Canceled so it is treated as a cancellation, while errors.As
// keeps it distinguishable from a cancellation requested through the context.
type AbortedError struct {
	// Attempts is the number of times the operation was invoked.
	Attempts int
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("retry aborted after %d attempt(s)", e.Attempts)
}

// Is reports whether target is context.Canceled.
func (e *AbortedError) Is(target error) bool {
	return target == context.Canceled
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInvalidOperation):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitCanceled
	}

	// Cobra reports argument problems as plain errors.
	errStr := err.Error()
	if strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "requires at least") ||
		strings.Contains(errStr, "missing required argument") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument \"") {
		return ExitUsageError
	}

	return ExitGeneralError
}
