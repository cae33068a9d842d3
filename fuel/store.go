/*
store.go - Persistence interfaces for tanks, transactions, and identities

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

APPEND-ONLY CONTRACT:
  The transaction log is append-only: AppendTransaction is the sole write
  and there is no update or delete. Corrections are compensating entries.
  Tank rows do mutate (level, price, retirement), but the level mutation
  goes through a compare-and-set keyed on the tank's version so that a
  stale writer is refused rather than silently overwritten.

ATOMICITY:
  TxStore.WithTx gives the ledger its one-logical-unit guarantee: the
  level update and the transaction append commit together or not at all.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite backend
  - fuel/store:   in-memory backend for tests and dev

SEE ALSO:
  - ledger.go: The only caller of the write paths
  - guard.go:  Serializes callers of UpdateTankLevel per tank
*/
package fuel

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TANK STORE
// =============================================================================

// TankStore persists the tank catalog and its live levels.
type TankStore interface {
	// SaveTank inserts a new tank.
	SaveTank(ctx context.Context, tank Tank) error

	// GetTank returns a tank by ID, or nil if it doesn't exist.
	GetTank(ctx context.Context, id TankID) (*Tank, error)

	// ListTanks returns all tanks in display order.
	ListTanks(ctx context.Context) ([]Tank, error)

	// UpdateTankLevel sets remaining and lastFuelingAt if and only if the
	// stored version still equals expectedVersion, incrementing it.
	// Returns ErrConcurrencyConflict when a competing writer got there
	// first, ErrTankNotFound when the tank doesn't exist.
	UpdateTankLevel(ctx context.Context, id TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error

	// UpdateTankPrice sets the current unit price. Does not touch history.
	UpdateTankPrice(ctx context.Context, id TankID, price decimal.Decimal) error

	// RetireTank soft-retires a tank. Its history stays readable.
	RetireTank(ctx context.Context, id TankID) error
}

// =============================================================================
// TRANSACTION STORE - Append-only
// =============================================================================

// TransactionFilter narrows a history query. Nil fields match everything.
type TransactionFilter struct {
	TankID     *TankID
	OperatorID *IdentityID
	BilledToID *IdentityID
	From       *time.Time
	To         *time.Time
}

// Page is a limit/offset window over a history query. A non-positive
// Limit means no limit; callers that serve pages clamp it themselves.
type Page struct {
	Limit  int
	Offset int
}

// TransactionStore persists ledger entries. Append-only: no update, no
// delete, ever.
type TransactionStore interface {
	// AppendTransaction records an entry. This is the ONLY write.
	// Appending a reversal whose original is already reversed returns
	// ErrAlreadyReversed.
	AppendTransaction(ctx context.Context, tx FuelTransaction) error

	// GetTransaction returns an entry by ID, or nil if it doesn't exist.
	GetTransaction(ctx context.Context, id TransactionID) (*FuelTransaction, error)

	// QueryTransactions returns matching entries newest-first.
	QueryTransactions(ctx context.Context, filter TransactionFilter, page Page) ([]FuelTransaction, error)

	// IsReversed reports whether a compensating entry exists for id.
	IsReversed(ctx context.Context, id TransactionID) (bool, error)
}

// =============================================================================
// IDENTITY DIRECTORY - Opaque lookup collaborator
// =============================================================================

// IdentityDirectory resolves operator and payer identities. The engine
// treats it as an external service; the bundled implementations are just
// mirrors of its records.
type IdentityDirectory interface {
	// GetIdentity returns an identity by ID, or nil if unknown.
	GetIdentity(ctx context.Context, id IdentityID) (*Identity, error)

	// ListIdentities returns all known identities.
	ListIdentities(ctx context.Context) ([]Identity, error)

	// SaveIdentity upserts an identity record.
	SaveIdentity(ctx context.Context, ident Identity) error
}

// =============================================================================
// COMBINED STORE
// =============================================================================

// Store is everything the engine needs from persistence.
type Store interface {
	TankStore
	TransactionStore
	IdentityDirectory
}

// TxStore wraps Store with transaction support. WithTx executes fn
// against a transactional view; if fn returns an error the whole unit is
// rolled back, otherwise it commits.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
