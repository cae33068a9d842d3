/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements fuel.TxStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The transaction table never sees an UPDATE or DELETE. Corrections are
  compensating entries; a partial unique index on reversal_of enforces
  at most one reversal per entry at the database level, so even two
  racing Reverse calls cannot both land.

CONCURRENCY:
  The tank level mutation is a compare-and-set on the row's version
  column: UPDATE ... WHERE id = ? AND version = ?. Zero rows affected
  means a competing writer committed first and the caller gets
  fuel.ErrConcurrencyConflict. Combined with WithTx, the level update
  and the ledger append commit as one unit or not at all.

KEY TABLES:
  tanks:             Catalog rows with live level + CAS version
  fuel_transactions: Immutable ledger of all fuel movements
  identities:        Operator and organization records

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/fuel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := fuel.NewLedger(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - fuel/store.go: Interface definitions
  - fuel/ledger.go: Higher-level ledger using Store
  - fuel/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/fuel-engine/fuel"
)

// timeLayout keeps fixed-width nanoseconds so TEXT timestamps compare
// and sort correctly inside SQLite. RFC3339Nano drops trailing zeros
// and would break range queries.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements fuel.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx so the same internals
// serve direct calls and transactional views.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Tanks (catalog + live level)
	CREATE TABLE IF NOT EXISTS tanks (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		color TEXT,
		capacity TEXT NOT NULL,
		remaining TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		retired INTEGER NOT NULL DEFAULT 0,
		last_fueling_at TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tanks_position
		ON tanks(position, created_at);

	-- Fuel transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS fuel_transactions (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL,
		operator_id TEXT NOT NULL,
		billed_to_id TEXT NOT NULL,
		aircraft_ref TEXT NOT NULL,
		amount TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		reason TEXT,
		reversal_of TEXT,
		created_at TEXT NOT NULL
	);

	-- History hot path: newest-first per tank
	CREATE INDEX IF NOT EXISTS idx_fuel_tx_tank_created
		ON fuel_transactions(tank_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_fuel_tx_operator
		ON fuel_transactions(operator_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_fuel_tx_billed_to
		ON fuel_transactions(billed_to_id, created_at DESC);

	-- CRITICAL: a transaction can be reversed at most once
	CREATE UNIQUE INDEX IF NOT EXISTS idx_fuel_tx_single_reversal
		ON fuel_transactions(reversal_of)
		WHERE reversal_of IS NOT NULL;

	-- Identities (operators and billable organizations)
	CREATE TABLE IF NOT EXISTS identities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TANK STORE (fuel.TankStore interface)
// =============================================================================

// SaveTank inserts a new tank row.
func (s *Store) SaveTank(ctx context.Context, tank fuel.Tank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTank(ctx, s.db, tank)
}

func (s *Store) saveTank(ctx context.Context, q querier, tank fuel.Tank) error {
	query := `
		INSERT INTO tanks
		(id, label, color, capacity, remaining, unit_price, position, retired, last_fueling_at, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		tank.ID,
		tank.Label,
		tank.Color,
		tank.Capacity.String(),
		tank.Remaining.String(),
		tank.UnitPrice.String(),
		tank.Position,
		boolToInt(tank.Retired),
		nullTime(tank.LastFuelingAt),
		tank.Version,
		tank.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return &fuel.StorageError{Op: "save tank", Err: err}
	}
	return nil
}

const tankColumns = `id, label, color, capacity, remaining, unit_price, position, retired, last_fueling_at, version, created_at`

// GetTank returns a tank by ID, or nil if missing.
func (s *Store) GetTank(ctx context.Context, id fuel.TankID) (*fuel.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTank(ctx, s.db, id)
}

func (s *Store) getTank(ctx context.Context, q querier, id fuel.TankID) (*fuel.Tank, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+tankColumns+` FROM tanks WHERE id = ?`, id)

	tank, err := scanTank(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &fuel.StorageError{Op: "get tank", Err: err}
	}
	return tank, nil
}

// ListTanks returns all tanks in display order.
func (s *Store) ListTanks(ctx context.Context) ([]fuel.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTanks(ctx, s.db)
}

func (s *Store) listTanks(ctx context.Context, q querier) ([]fuel.Tank, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+tankColumns+` FROM tanks ORDER BY position ASC, created_at ASC`)
	if err != nil {
		return nil, &fuel.StorageError{Op: "list tanks", Err: err}
	}
	defer rows.Close()

	var tanks []fuel.Tank
	for rows.Next() {
		tank, err := scanTank(rows)
		if err != nil {
			return nil, &fuel.StorageError{Op: "list tanks", Err: err}
		}
		tanks = append(tanks, *tank)
	}
	return tanks, rows.Err()
}

// UpdateTankLevel performs the compare-and-set level mutation.
func (s *Store) UpdateTankLevel(ctx context.Context, id fuel.TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTankLevel(ctx, s.db, id, remaining, fueledAt, expectedVersion)
}

func (s *Store) updateTankLevel(ctx context.Context, q querier, id fuel.TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE tanks
		SET remaining = ?, last_fueling_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, remaining.String(), fueledAt.UTC().Format(timeLayout), id, expectedVersion)
	if err != nil {
		return &fuel.StorageError{Op: "update tank level", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &fuel.StorageError{Op: "update tank level", Err: err}
	}
	if affected == 0 {
		// Either the tank vanished or a competing writer bumped the
		// version. Distinguish so callers retry only the latter.
		tank, err := s.getTank(ctx, q, id)
		if err != nil {
			return err
		}
		if tank == nil {
			return fuel.ErrTankNotFound
		}
		return fuel.ErrConcurrencyConflict
	}
	return nil
}

// UpdateTankPrice sets the current unit price. Historical entries keep
// the price they were appended with.
func (s *Store) UpdateTankPrice(ctx context.Context, id fuel.TankID, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTankPrice(ctx, s.db, id, price)
}

func (s *Store) updateTankPrice(ctx context.Context, q querier, id fuel.TankID, price decimal.Decimal) error {
	res, err := q.ExecContext(ctx,
		`UPDATE tanks SET unit_price = ? WHERE id = ?`, price.String(), id)
	if err != nil {
		return &fuel.StorageError{Op: "update tank price", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fuel.ErrTankNotFound
	}
	return nil
}

// RetireTank soft-retires a tank. Retired tanks stay listed and keep
// their history but reject new transactions.
func (s *Store) RetireTank(ctx context.Context, id fuel.TankID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retireTank(ctx, s.db, id)
}

func (s *Store) retireTank(ctx context.Context, q querier, id fuel.TankID) error {
	res, err := q.ExecContext(ctx,
		`UPDATE tanks SET retired = 1 WHERE id = ?`, id)
	if err != nil {
		return &fuel.StorageError{Op: "retire tank", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fuel.ErrTankNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTION STORE (fuel.TransactionStore interface)
// =============================================================================

// AppendTransaction records a ledger entry. Append-only.
func (s *Store) AppendTransaction(ctx context.Context, tx fuel.FuelTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendTransaction(ctx, s.db, tx)
}

func (s *Store) appendTransaction(ctx context.Context, q querier, tx fuel.FuelTransaction) error {
	query := `
		INSERT INTO fuel_transactions
		(id, tank_id, operator_id, billed_to_id, aircraft_ref, amount, unit_price, reason, reversal_of, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		tx.ID,
		tx.TankID,
		tx.OperatorID,
		tx.BilledToID,
		tx.AircraftRef.String(),
		tx.Amount.String(),
		tx.UnitPrice.String(),
		tx.Reason,
		nullString(string(tx.ReversalOf)),
		tx.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		// The partial unique index on reversal_of fires when a second
		// reversal targets the same entry.
		if isUniqueConstraintError(err) {
			return fuel.ErrAlreadyReversed
		}
		return &fuel.StorageError{Op: "append transaction", Err: err}
	}
	return nil
}

const txColumns = `id, tank_id, operator_id, billed_to_id, aircraft_ref, amount, unit_price, reason, reversal_of, created_at`

// GetTransaction returns a ledger entry by ID, or nil if missing.
func (s *Store) GetTransaction(ctx context.Context, id fuel.TransactionID) (*fuel.FuelTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTransaction(ctx, s.db, id)
}

func (s *Store) getTransaction(ctx context.Context, q querier, id fuel.TransactionID) (*fuel.FuelTransaction, error) {
	txs, err := s.queryRaw(ctx, q,
		`SELECT `+txColumns+` FROM fuel_transactions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

// QueryTransactions returns matching entries newest-first. ID breaks
// created_at ties so paging stays stable.
func (s *Store) QueryTransactions(ctx context.Context, filter fuel.TransactionFilter, page fuel.Page) ([]fuel.FuelTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryTransactions(ctx, s.db, filter, page)
}

func (s *Store) queryTransactions(ctx context.Context, q querier, filter fuel.TransactionFilter, page fuel.Page) ([]fuel.FuelTransaction, error) {
	var (
		where []string
		args  []any
	)

	if filter.TankID != nil {
		where = append(where, "tank_id = ?")
		args = append(args, *filter.TankID)
	}
	if filter.OperatorID != nil {
		where = append(where, "operator_id = ?")
		args = append(args, *filter.OperatorID)
	}
	if filter.BilledToID != nil {
		where = append(where, "billed_to_id = ?")
		args = append(args, *filter.BilledToID)
	}
	if filter.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, filter.From.UTC().Format(timeLayout))
	}
	if filter.To != nil {
		where = append(where, "created_at <= ?")
		args = append(args, filter.To.UTC().Format(timeLayout))
	}

	query := `SELECT ` + txColumns + ` FROM fuel_transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if page.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset)
	} else if page.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET; -1 means none.
		query += " LIMIT -1 OFFSET ?"
		args = append(args, page.Offset)
	}

	return s.queryRaw(ctx, q, query, args...)
}

func (s *Store) queryRaw(ctx context.Context, q querier, query string, args ...any) ([]fuel.FuelTransaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &fuel.StorageError{Op: "query transactions", Err: err}
	}
	defer rows.Close()

	var txs []fuel.FuelTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, &fuel.StorageError{Op: "query transactions", Err: err}
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// IsReversed reports whether a compensating entry exists for the given
// transaction.
func (s *Store) IsReversed(ctx context.Context, id fuel.TransactionID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isReversed(ctx, s.db, id)
}

func (s *Store) isReversed(ctx context.Context, q querier, id fuel.TransactionID) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fuel_transactions WHERE reversal_of = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, &fuel.StorageError{Op: "check reversal", Err: err}
	}
	return count > 0, nil
}

// =============================================================================
// IDENTITY DIRECTORY (fuel.IdentityDirectory interface)
// =============================================================================

// SaveIdentity upserts an identity record.
func (s *Store) SaveIdentity(ctx context.Context, ident fuel.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveIdentity(ctx, s.db, ident)
}

func (s *Store) saveIdentity(ctx context.Context, q querier, ident fuel.Identity) error {
	query := `
		INSERT INTO identities (id, name, kind, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind
	`
	_, err := q.ExecContext(ctx, query,
		ident.ID, ident.Name, ident.Kind,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return &fuel.StorageError{Op: "save identity", Err: err}
	}
	return nil
}

// GetIdentity returns an identity by ID, or nil if unknown.
func (s *Store) GetIdentity(ctx context.Context, id fuel.IdentityID) (*fuel.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getIdentity(ctx, s.db, id)
}

func (s *Store) getIdentity(ctx context.Context, q querier, id fuel.IdentityID) (*fuel.Identity, error) {
	var ident fuel.Identity
	err := q.QueryRowContext(ctx,
		`SELECT id, name, kind FROM identities WHERE id = ?`, id,
	).Scan(&ident.ID, &ident.Name, &ident.Kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &fuel.StorageError{Op: "get identity", Err: err}
	}
	return &ident, nil
}

// ListIdentities returns all identities ordered by name.
func (s *Store) ListIdentities(ctx context.Context) ([]fuel.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listIdentities(ctx, s.db)
}

func (s *Store) listIdentities(ctx context.Context, q querier) ([]fuel.Identity, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, kind FROM identities ORDER BY name ASC`)
	if err != nil {
		return nil, &fuel.StorageError{Op: "list identities", Err: err}
	}
	defer rows.Close()

	var idents []fuel.Identity
	for rows.Next() {
		var ident fuel.Identity
		if err := rows.Scan(&ident.ID, &ident.Name, &ident.Kind); err != nil {
			return nil, &fuel.StorageError{Op: "list identities", Err: err}
		}
		idents = append(idents, ident)
	}
	return idents, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (fuel.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The view passed to
// fn routes everything through the transaction, so reads observe fn's
// own uncommitted writes and the whole unit commits or rolls back
// together.
func (s *Store) WithTx(ctx context.Context, fn func(store fuel.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &fuel.StorageError{Op: "begin transaction", Err: err}
	}
	defer sqlTx.Rollback()

	if err := fn(&txView{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return &fuel.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

// txView routes store calls through a *sql.Tx. No locking here: WithTx
// already holds the store lock for the whole unit.
type txView struct {
	tx     *sql.Tx
	parent *Store
}

func (tv *txView) SaveTank(ctx context.Context, tank fuel.Tank) error {
	return tv.parent.saveTank(ctx, tv.tx, tank)
}

func (tv *txView) GetTank(ctx context.Context, id fuel.TankID) (*fuel.Tank, error) {
	return tv.parent.getTank(ctx, tv.tx, id)
}

func (tv *txView) ListTanks(ctx context.Context) ([]fuel.Tank, error) {
	return tv.parent.listTanks(ctx, tv.tx)
}

func (tv *txView) UpdateTankLevel(ctx context.Context, id fuel.TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error {
	return tv.parent.updateTankLevel(ctx, tv.tx, id, remaining, fueledAt, expectedVersion)
}

func (tv *txView) UpdateTankPrice(ctx context.Context, id fuel.TankID, price decimal.Decimal) error {
	return tv.parent.updateTankPrice(ctx, tv.tx, id, price)
}

func (tv *txView) RetireTank(ctx context.Context, id fuel.TankID) error {
	return tv.parent.retireTank(ctx, tv.tx, id)
}

func (tv *txView) AppendTransaction(ctx context.Context, tx fuel.FuelTransaction) error {
	return tv.parent.appendTransaction(ctx, tv.tx, tx)
}

func (tv *txView) GetTransaction(ctx context.Context, id fuel.TransactionID) (*fuel.FuelTransaction, error) {
	return tv.parent.getTransaction(ctx, tv.tx, id)
}

func (tv *txView) QueryTransactions(ctx context.Context, filter fuel.TransactionFilter, page fuel.Page) ([]fuel.FuelTransaction, error) {
	return tv.parent.queryTransactions(ctx, tv.tx, filter, page)
}

func (tv *txView) IsReversed(ctx context.Context, id fuel.TransactionID) (bool, error) {
	return tv.parent.isReversed(ctx, tv.tx, id)
}

func (tv *txView) GetIdentity(ctx context.Context, id fuel.IdentityID) (*fuel.Identity, error) {
	return tv.parent.getIdentity(ctx, tv.tx, id)
}

func (tv *txView) ListIdentities(ctx context.Context) ([]fuel.Identity, error) {
	return tv.parent.listIdentities(ctx, tv.tx)
}

func (tv *txView) SaveIdentity(ctx context.Context, ident fuel.Identity) error {
	return tv.parent.saveIdentity(ctx, tv.tx, ident)
}

// =============================================================================
// SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTank(row rowScanner) (*fuel.Tank, error) {
	var (
		tank          fuel.Tank
		color         sql.NullString
		capacity      string
		remaining     string
		unitPrice     string
		retired       int
		lastFuelingAt sql.NullString
		createdAt     string
	)

	err := row.Scan(
		&tank.ID, &tank.Label, &color, &capacity, &remaining, &unitPrice,
		&tank.Position, &retired, &lastFuelingAt, &tank.Version, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	tank.Color = color.String
	tank.Capacity = fuel.MustParseDecimal(capacity)
	tank.Remaining = fuel.MustParseDecimal(remaining)
	tank.UnitPrice = fuel.MustParseDecimal(unitPrice)
	tank.Retired = retired != 0
	if lastFuelingAt.Valid {
		tank.LastFuelingAt, _ = time.Parse(time.RFC3339Nano, lastFuelingAt.String)
	}
	tank.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &tank, nil
}

func scanTransaction(rows *sql.Rows) (fuel.FuelTransaction, error) {
	var (
		tx          fuel.FuelTransaction
		aircraftRef string
		amount      string
		unitPrice   string
		reason      sql.NullString
		reversalOf  sql.NullString
		createdAt   string
	)

	err := rows.Scan(
		&tx.ID, &tx.TankID, &tx.OperatorID, &tx.BilledToID, &aircraftRef,
		&amount, &unitPrice, &reason, &reversalOf, &createdAt,
	)
	if err != nil {
		return tx, err
	}

	tx.AircraftRef = fuel.ParseAircraftRef(aircraftRef)
	tx.Amount = fuel.MustParseDecimal(amount)
	tx.UnitPrice = fuel.MustParseDecimal(unitPrice)
	tx.Reason = reason.String
	tx.ReversalOf = fuel.TransactionID(reversalOf.String)
	tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return tx, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
