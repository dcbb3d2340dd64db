/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place. The propagation policy is strict:
  expected business-rule outcomes (rule violations, insufficient balance)
  are returned as data on the ValidationResult, never thrown as hard
  failures. Only programming-contract violations (unknown leave type,
  malformed wiring) surface as plain errors.

ERROR CATEGORIES:
  1. Transition errors - attempted state change from a terminal state or
     by an unauthorized actor; fatal to the single operation, no side effect
  2. Ledger errors - balance shortage, quota exhaustion
  3. Contract errors - should never occur in production

USAGE:
  if errors.Is(err, leave.ErrInvalidTransition) {
      var itErr *leave.InvalidTransitionError
      errors.As(err, &itErr)
      // itErr.Current tells the caller which state the request is in
  }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned by the ledger when a reservation
	// would exceed the remaining allocation. The validator surfaces it as
	// a violation, alongside any other rule failures.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrWeekendQuotaExhausted is returned when the per-period weekend
	// sub-quota is already fully used.
	ErrWeekendQuotaExhausted = errors.New("weekend leave quota exhausted")

	// ErrInvalidTransition is returned for a state change attempted from a
	// terminal state, or by an actor not permitted to make it. The losing
	// side of a concurrent transition race receives this too.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotesRequired is returned when a rejection is attempted without
	// mandatory reviewer notes.
	ErrNotesRequired = errors.New("reviewer notes are required to reject")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrEmployeeNotFound is returned when the directory has no such employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrTeamNotFound is returned when the directory has no such team.
	ErrTeamNotFound = errors.New("team not found")

	// ErrUnknownLeaveType is a programming-contract violation: the policy
	// set has no entry for the submitted type.
	ErrUnknownLeaveType = errors.New("unknown leave type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports the shortage behind a failed reservation.
type InsufficientBalanceError struct {
	Key       LedgerKey
	Remaining string
	Requested string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s/%s %d-H%d: remaining %s, requested %s",
		e.Key.EmployeeID, e.Key.Type, e.Key.Year, e.Key.Half, e.Remaining, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InvalidTransitionError tells the caller which state the request is
// actually in, so a failed transition can be reported precisely.
type InvalidTransitionError struct {
	RequestID RequestID
	Current   RequestStatus
	Attempted RequestStatus
	Reason    string // e.g. "request is terminal", "only the owner may cancel"
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move request %s from %s to %s: %s",
			e.RequestID, e.Current, e.Attempted, e.Reason)
	}
	return fmt.Sprintf("cannot move request %s from %s to %s",
		e.RequestID, e.Current, e.Attempted)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than an engine fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrWeekendQuotaExhausted) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotesRequired)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrTeamNotFound)
}
