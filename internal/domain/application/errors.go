package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("application not found")
	ErrAlreadyProcessed = errors.New("application already processed")
	ErrEmptySubmission  = errors.New("no application data provided")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field carries at least one error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// PersistenceError wraps a store failure that is not a domain condition.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PartialCommitError means a loan row was written but the application could
// not be moved out of pending and the compensating delete failed too. The
// loan must be reconciled by hand.
type PartialCommitError struct {
	ApplicationID   string
	LoanID          string
	Cause           error
	CompensationErr error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit: loan %s written for application %s: %v (cleanup: %v)",
		e.LoanID, e.ApplicationID, e.Cause, e.CompensationErr)
}

func (e *PartialCommitError) Unwrap() []error {
	return []error{e.Cause, e.CompensationErr}
}
