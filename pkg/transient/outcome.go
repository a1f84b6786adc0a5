package transient

import (
	"context"
	"errors"
)

// OutcomeKind is the terminal state of a retried call.
type OutcomeKind int

const (
	// OutcomeSucceeded means an attempt returned without error.
	OutcomeSucceeded OutcomeKind = iota
	// OutcomeFaulted means the call ended with a fault: a permanent error or exhausted retries.
	OutcomeFaulted
	// OutcomeCanceled means the call was canceled or aborted; it is never a fault.
	OutcomeCanceled
)

// String returns the string representation of OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFaulted:
		return "faulted"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// CancelCause tells the two kinds of cancellation apart.
type CancelCause int

const (
	// CauseNone is used for outcomes that are not cancellations.
	CauseNone CancelCause = iota
	// CauseRequested means the caller's context was canceled or timed out.
	CauseRequested
	// CauseAborted means the operation returned an empty RetryLimitExceededError.
	CauseAborted
)

// String returns the string representation of CancelCause.
func (c CancelCause) String() string {
	switch c {
	case CauseRequested:
		return "requested"
	case CauseAborted:
		return "aborted"
	default:
		return "none"
	}
}

// Outcome tags the result of a call so that cancellations are never mistaken for faults.
type Outcome struct {
	Kind  OutcomeKind
	Cause CancelCause
	Err   error
}

// OutcomeOf classifies the error returned by an executor entry point.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeSucceeded}
	}

	var aborted *AbortedError
	if errors.As(err, &aborted) {
		return Outcome{Kind: OutcomeCanceled, Cause: CauseAborted, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: OutcomeCanceled, Cause: CauseRequested, Err: err}
	}
	return Outcome{Kind: OutcomeFaulted, Err: err}
}
