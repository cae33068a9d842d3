/*
errors.go - Centralized error types for the fuel engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses without knowing any
  domain internals beyond the classifier helpers at the bottom.

ERROR CATEGORIES:
  1. Validation errors - malformed input, caller must correct it
  2. Inventory errors - the physics of the tank reject the movement
  3. Concurrency errors - a competing writer won; retry the whole call
  4. Storage errors - the persistence collaborator failed

USAGE:
  if errors.Is(err, fuel.ErrInsufficientFuel) { ... }

  var short *fuel.InsufficientFuelError
  if errors.As(err, &short) { short.Remaining ... }

SEE ALSO:
  - ledger.go: Raises inventory and validation errors
  - guard.go: Raises ErrConcurrencyConflict
*/
package fuel

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all malformed-input rejections.
	ErrValidation = errors.New("validation failed")

	// ErrTankNotFound is returned when a referenced tank doesn't exist.
	ErrTankNotFound = errors.New("tank not found")

	// ErrTransactionNotFound is returned when a referenced ledger entry
	// doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrIdentityNotFound is returned when an operator or payer identity
	// doesn't resolve.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrInsufficientFuel is returned when a consumption would drive the
	// tank below empty. The transaction is rejected, never clamped.
	ErrInsufficientFuel = errors.New("insufficient fuel")

	// ErrOverCapacity is returned when a replenishment would drive the
	// tank above capacity. Same treatment: rejected, never clamped.
	ErrOverCapacity = errors.New("over capacity")

	// ErrUnknownPayer is returned when the requested billed-to identity is
	// not a known organization. Raised before any ledger mutation.
	ErrUnknownPayer = errors.New("unknown payer")

	// ErrTankRetired is returned when appending against a retired tank.
	ErrTankRetired = errors.New("tank is retired")

	// ErrAlreadyReversed is returned when reversing a transaction that
	// already has a compensating entry.
	ErrAlreadyReversed = errors.New("transaction already reversed")

	// ErrConcurrencyConflict is returned when the guard detected a race
	// and aborted one of two competing writers. The loser should retry the
	// whole append, re-reading the current level.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrStorage wraps failures from the persistence collaborator. On a
	// storage failure neither the level nor the entry was partially
	// committed.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which input field was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientFuelError details a consumption that exceeded the stock.
type InsufficientFuelError struct {
	TankID    TankID
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFuelError) Error() string {
	return fmt.Sprintf("insufficient fuel in tank %s: remaining %v, requested %v",
		e.TankID, e.Remaining, e.Requested)
}

func (e *InsufficientFuelError) Unwrap() error { return ErrInsufficientFuel }

// OverCapacityError details a replenishment that exceeded the tank.
type OverCapacityError struct {
	TankID    TankID
	Remaining decimal.Decimal
	Capacity  decimal.Decimal
	Delivered decimal.Decimal
}

func (e *OverCapacityError) Error() string {
	return fmt.Sprintf("tank %s cannot hold delivery: remaining %v, capacity %v, delivered %v",
		e.TankID, e.Remaining, e.Capacity, e.Delivered)
}

func (e *OverCapacityError) Unwrap() error { return ErrOverCapacity }

// StorageError wraps a backend failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsClientError returns true if the error is due to invalid client input
// or a rejected movement; correcting the request may succeed.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientFuel) ||
		errors.Is(err, ErrOverCapacity) ||
		errors.Is(err, ErrUnknownPayer) ||
		errors.Is(err, ErrTankRetired) ||
		errors.Is(err, ErrAlreadyReversed)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTankNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrIdentityNotFound)
}
