/*
ledger.go - The fuel transaction ledger

PURPOSE:
  The Ledger is the immutable source of truth for all fuel movements and
  the sole writer of tank levels. Every aircraft refueling and station
  delivery is recorded here; the tank's remaining level is just the
  running consequence of the entries.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No update, no delete. Ever.
  2. SIGN CONVENTION: Positive amount drains the tank, negative fills it.
  3. BOUNDS: An entry the tank could not physically satisfy is rejected
     outright, never clamped - the ledger must never record an impossible
     event.
  4. ATOMICITY: Level update and entry append commit together or not at
     all.

CORRECTIONS:
  A mistaken entry is never edited. Reverse appends a compensating entry
  with the negated amount; both remain in the ledger and the net effect
  is the correction, with history preserved.

EXAMPLE FLOW:
  1. Delivery truck fills 300L:      Amount -300, remaining 200 -> 500
  2. N7213G takes 50L of AVGAS:      Amount  +50, remaining 500 -> 450
  3. Attendant fat-fingers 500L:     Amount +500, rejected (insufficient)
  4. Wrong aircraft on entry 2:      Reverse -> Amount -50, remaining 500

SEE ALSO:
  - guard.go:   Serializes the level mutation
  - billing.go: Stamps the payer at submission time
  - store.go:   Persistence contract
*/
package fuel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default and maximum page sizes for history queries.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Ledger validates, applies, and records fuel transactions.
type Ledger struct {
	store   TxStore
	guard   *Guard
	billing *Attributor
	now     func() time.Time
}

// NewLedger creates a ledger over the given store.
func NewLedger(store TxStore) *Ledger {
	return &Ledger{
		store:   store,
		guard:   NewGuard(store),
		billing: NewAttributor(store),
		now:     time.Now,
	}
}

// AppendRequest is one fuel movement submitted for recording.
type AppendRequest struct {
	TankID      TankID
	OperatorID  IdentityID
	BilledToID  IdentityID // empty or "self" means the operator pays
	AircraftRef AircraftRef
	Amount      decimal.Decimal // signed litres, per the sign convention
	Reason      string
}

// Append validates a transaction request, applies it atomically, and
// persists it. On success the tank's remaining level and lastFuelingAt
// are updated and the immutable entry is recorded, as one unit.
//
// Rejections (ValidationError, ErrUnknownPayer, ErrInsufficientFuel,
// ErrOverCapacity, ErrConcurrencyConflict) leave no side effects. A
// conflict means a competing writer won; the caller may retry the whole
// call.
func (l *Ledger) Append(ctx context.Context, req AppendRequest) (FuelTransaction, error) {
	if req.Amount.IsZero() {
		return FuelTransaction{}, &ValidationError{Field: "amount", Message: "must not be zero"}
	}
	// The recipient must agree with the direction of flow: fuel drained
	// from the tank goes into a named aircraft, fuel added comes from a
	// station delivery.
	if req.Amount.IsPositive() && (req.AircraftRef.IsStation() || req.AircraftRef.Tail() == "") {
		return FuelTransaction{}, &ValidationError{Field: "aircraftRef", Message: "consumption requires an aircraft tail number"}
	}
	if req.Amount.IsNegative() && !req.AircraftRef.IsStation() {
		return FuelTransaction{}, &ValidationError{Field: "aircraftRef", Message: "replenishment must use the station reference"}
	}

	operator, err := l.store.GetIdentity(ctx, req.OperatorID)
	if err != nil {
		return FuelTransaction{}, err
	}
	if operator == nil {
		return FuelTransaction{}, ErrIdentityNotFound
	}

	payer, err := l.billing.ResolvePayer(ctx, req.OperatorID, req.BilledToID)
	if err != nil {
		return FuelTransaction{}, err
	}

	// Fail fast on a missing tank before entering the critical section.
	// The guard re-reads under its lock; this read is only for a clean
	// early rejection.
	if tank, err := l.store.GetTank(ctx, req.TankID); err != nil {
		return FuelTransaction{}, err
	} else if tank == nil {
		return FuelTransaction{}, ErrTankNotFound
	}

	now := l.now().UTC()
	tx := FuelTransaction{
		ID:          TransactionID(uuid.NewString()),
		TankID:      req.TankID,
		OperatorID:  req.OperatorID,
		BilledToID:  payer,
		AircraftRef: req.AircraftRef,
		Amount:      req.Amount,
		Reason:      req.Reason,
		CreatedAt:   now,
	}

	_, err = l.guard.Mutate(ctx, req.TankID, req.Amount, now,
		func(s Store, tank Tank, _ decimal.Decimal) error {
			tx.UnitPrice = tank.UnitPrice // price snapshot at append time
			return s.AppendTransaction(ctx, tx)
		})
	if err != nil {
		return FuelTransaction{}, err
	}
	return tx, nil
}

// History returns ledger entries matching the filter, newest-first.
func (l *Ledger) History(ctx context.Context, filter TransactionFilter, page Page) ([]FuelTransaction, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageLimit
	}
	if page.Limit > MaxPageLimit {
		page.Limit = MaxPageLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return l.store.QueryTransactions(ctx, filter, page)
}

// Get returns a single ledger entry.
func (l *Ledger) Get(ctx context.Context, id TransactionID) (FuelTransaction, error) {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return FuelTransaction{}, err
	}
	if tx == nil {
		return FuelTransaction{}, ErrTransactionNotFound
	}
	return *tx, nil
}

// Reverse appends a compensating entry with the negated amount against
// the same tank. The original record is untouched, and each entry can be
// reversed at most once. The compensating entry is subject to the same
// bound checks as any append: reversing a consumption after the tank was
// refilled to the brim is rejected with ErrOverCapacity.
func (l *Ledger) Reverse(ctx context.Context, id TransactionID, reason string) (FuelTransaction, error) {
	orig, err := l.Get(ctx, id)
	if err != nil {
		return FuelTransaction{}, err
	}

	reversed, err := l.store.IsReversed(ctx, id)
	if err != nil {
		return FuelTransaction{}, err
	}
	if reversed {
		return FuelTransaction{}, ErrAlreadyReversed
	}

	now := l.now().UTC()
	comp := FuelTransaction{
		ID:          TransactionID(uuid.NewString()),
		TankID:      orig.TankID,
		OperatorID:  orig.OperatorID,
		BilledToID:  orig.BilledToID,
		AircraftRef: orig.AircraftRef,
		Amount:      orig.Amount.Neg(),
		UnitPrice:   orig.UnitPrice, // compensate at the original price
		Reason:      reason,
		ReversalOf:  orig.ID,
		CreatedAt:   now,
	}

	_, err = l.guard.Mutate(ctx, orig.TankID, comp.Amount, now,
		func(s Store, _ Tank, _ decimal.Decimal) error {
			return s.AppendTransaction(ctx, comp)
		})
	if err != nil {
		return FuelTransaction{}, err
	}
	return comp, nil
}
