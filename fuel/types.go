/*
Package fuel provides the fuel inventory and transaction ledger engine.

PURPOSE:
  This package contains the domain types and algorithms for airport fuel
  accounting: a catalog of physical tanks, an append-only transaction log
  of every fuel movement, and derived statistics (fill levels, monthly
  consumption, revenue). Refueling an aircraft and topping up a station
  tank are the same kind of event with opposite signs.

KEY CONCEPTS IN THIS FILE (types.go):
  - Tank: A physical fuel reservoir with capacity, live level, and price
  - FuelTransaction: An immutable ledger entry recording one fuel movement
  - AircraftRef: Who received the fuel - an aircraft, or the station itself
  - Identity: An operator or organization known to the billing side

SIGN CONVENTION (load-bearing):
  A positive transaction amount is CONSUMPTION: fuel leaves the tank into
  an aircraft, and remaining decreases. A negative amount is REPLENISHMENT:
  a delivery truck fills the station, and remaining increases. Every part
  of this package - validation, level mutation, revenue - relies on this
  convention exactly.

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified, only reversed
  2. Precision: Uses decimal.Decimal for litres and money
  3. Type Safety: Strong typing for IDs prevents mixing tank/identity IDs
  4. Auditability: Every level change is explained by a ledger entry

SEE ALSO:
  - ledger.go: Transaction validation and the append path
  - guard.go: Per-tank serialization of level mutations
  - metrics.go: Derived read-only views
*/
package fuel

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TankID string
type IdentityID string
type TransactionID string

// BilledToSelf is the sentinel payer meaning "the operator pays".
const BilledToSelf IdentityID = "self"

// =============================================================================
// TANK - A physical fuel reservoir
// =============================================================================

// Tank is a fuel resource: one physical reservoir holding one fuel type.
//
// INVARIANT: 0 <= Remaining <= Capacity at all times. Remaining is mutated
// exclusively by the Ledger through the Guard; nothing else writes it.
type Tank struct {
	ID        TankID
	Label     string // display name, e.g. "AVGAS", "JetA1"
	Color     string // chart color for the dashboard
	Capacity  decimal.Decimal
	Remaining decimal.Decimal
	UnitPrice decimal.Decimal // current price per litre; snapshotted onto transactions
	Position  int             // administrator-defined display order
	Retired   bool            // soft-retired tanks reject new transactions

	// LastFuelingAt is the time of the most recent transaction touching
	// this tank. Zero if the tank has never been touched.
	LastFuelingAt time.Time

	// Version increments on every level mutation. Storage backends use it
	// as the compare-and-set token for concurrent writers.
	Version int64

	CreatedAt time.Time
}

// PercentFull returns the fill level as a percentage, clamped to [0, 100].
// A zero or missing capacity reads as empty rather than dividing by zero.
func (t Tank) PercentFull() float64 {
	if !t.Capacity.IsPositive() {
		return 0
	}
	pct, _ := t.Remaining.Div(t.Capacity).Mul(decimal.NewFromInt(100)).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// =============================================================================
// AIRCRAFT REFERENCE - Recipient of the fuel movement
// =============================================================================

// stationSentinel is the stored marker for "station replenishment".
// It survives round-trips through storage and the API unchanged.
const stationSentinel = "STATION"

// AircraftRef identifies what a transaction fueled: a specific aircraft
// (free-text tail number) or the station's own tank during a delivery.
// The distinction is a type-level fact, not a string comparison at use
// sites.
type AircraftRef struct {
	tail    string
	station bool
}

// Aircraft returns a reference to an aircraft by tail number.
func Aircraft(tail string) AircraftRef {
	return AircraftRef{tail: tail}
}

// StationRef returns the sentinel reference for a station replenishment.
func StationRef() AircraftRef {
	return AircraftRef{station: true}
}

// ParseAircraftRef reconstructs a reference from its stored form.
func ParseAircraftRef(s string) AircraftRef {
	if s == stationSentinel {
		return StationRef()
	}
	return Aircraft(s)
}

func (r AircraftRef) IsStation() bool { return r.station }
func (r AircraftRef) Tail() string    { return r.tail }

func (r AircraftRef) String() string {
	if r.station {
		return stationSentinel
	}
	return r.tail
}

// =============================================================================
// FUEL TRANSACTION - Immutable ledger entry
// =============================================================================

// FuelTransaction records one fuel movement against one tank.
//
// INVARIANTS:
//   - Immutable once appended. Corrections are new compensating entries.
//   - Amount is signed per the package sign convention and never zero.
//   - UnitPrice is the tank's price at append time. Later price edits do
//     not rewrite history.
type FuelTransaction struct {
	ID          TransactionID
	TankID      TankID
	OperatorID  IdentityID // who performed the physical action
	BilledToID  IdentityID // who pays; resolved by the Attributor
	AircraftRef AircraftRef
	Amount      decimal.Decimal // litres; >0 consumption, <0 replenishment
	UnitPrice   decimal.Decimal // price per litre captured at append time
	Reason      string

	// ReversalOf links a compensating entry to the transaction it undoes.
	// Empty for ordinary entries.
	ReversalOf TransactionID

	CreatedAt time.Time
}

// IsConsumption reports whether this entry drained the tank.
func (tx FuelTransaction) IsConsumption() bool { return tx.Amount.IsPositive() }

// IsReplenishment reports whether this entry filled the tank.
func (tx FuelTransaction) IsReplenishment() bool { return tx.Amount.IsNegative() }

// IsReversal reports whether this entry compensates an earlier one.
func (tx FuelTransaction) IsReversal() bool { return tx.ReversalOf != "" }

// =============================================================================
// IDENTITY - Operator or billable organization
// =============================================================================

type IdentityKind string

const (
	IdentityPerson       IdentityKind = "person"
	IdentityOrganization IdentityKind = "organization"
)

// Identity is an opaque handle from the identity collaborator. The engine
// only cares about existence and kind; names are display sugar.
type Identity struct {
	ID   IdentityID
	Name string
	Kind IdentityKind
}

// =============================================================================
// HELPERS
// =============================================================================

// Litres builds a decimal quantity from a float. Convenience for tests
// and seed data; API input parses strings directly.
func Litres(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// MustParseDecimal parses a stored decimal string, returning zero on
// malformed input (storage only ever writes canonical forms).
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
