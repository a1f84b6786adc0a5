package transient_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/transient/pkg/transient"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  transient.OutcomeKind
		wantCause transient.CancelCause
	}{
		{"success", nil, transient.OutcomeSucceeded, transient.CauseNone},
		{"fault", errors.New("boom"), transient.OutcomeFaulted, transient.CauseNone},
		{"canceled", context.Canceled, transient.OutcomeCanceled, transient.CauseRequested},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), transient.OutcomeCanceled, transient.CauseRequested},
		{"aborted", &transient.AbortedError{Attempts: 1}, transient.OutcomeCanceled, transient.CauseAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transient.OutcomeOf(tt.err)
			if got.Kind != tt.wantKind || got.Cause != tt.wantCause {
				t.Errorf("OutcomeOf(%v) = %v/%v, want %v/%v", tt.err, got.Kind, got.Cause, tt.wantKind, tt.wantCause)
			}
			if got.Err != tt.err {
				t.Errorf("OutcomeOf(%v).Err = %v", tt.err, got.Err)
			}
		})
	}
}

func TestOutcomeStrings(t *testing.T) {
	if transient.OutcomeFaulted.String() != "faulted" || transient.OutcomeKind(99).String() != "unknown" {
		t.Errorf("Unexpected OutcomeKind strings")
	}
	if transient.CauseAborted.String() != "aborted" || transient.CauseNone.String() != "none" {
		t.Errorf("Unexpected CancelCause strings")
	}
}
