// Package errs defines the domain error taxonomy shared by the ledger and
// the trading engine. Callers distinguish the kinds with errors.As so that
// invalid input is never conflated with a missing record or a store failure.
package errs

import "fmt"

// ValidationError reports malformed or out-of-range input. The caller can
// correct the input and resubmit.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a referenced account or trade does not exist.
type NotFoundError struct {
	Kind string // "account" or "trade"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidStateError reports an operation that is illegal for the trade's
// current status, such as adding a position to a closed trade.
type InvalidStateError struct {
	TradeID string
	Status  string
	Op      string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s trade %s in status %s", e.Op, e.TradeID, e.Status)
}

// ConflictError reports a uniqueness violation on create, or a
// referential-integrity violation on account delete.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflictf builds a ConflictError from a format string.
func Conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a storage failure. It is retryable by the caller,
// unlike the domain errors above.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it already is one of
// the domain error kinds, which pass through untouched.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ValidationError, *NotFoundError, *InvalidStateError, *ConflictError, *PersistenceError:
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
