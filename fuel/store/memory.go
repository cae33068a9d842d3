// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/fuel-engine/fuel"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	tanks        map[fuel.TankID]fuel.Tank
	transactions []fuel.FuelTransaction // creation order
	reversed     map[fuel.TransactionID]bool
	identities   map[fuel.IdentityID]fuel.Identity
}

func NewMemory() *Memory {
	return &Memory{
		tanks:      make(map[fuel.TankID]fuel.Tank),
		reversed:   make(map[fuel.TransactionID]bool),
		identities: make(map[fuel.IdentityID]fuel.Identity),
	}
}

// =============================================================================
// TANK STORE
// =============================================================================

func (m *Memory) SaveTank(_ context.Context, tank fuel.Tank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tanks[tank.ID] = tank
	return nil
}

func (m *Memory) GetTank(_ context.Context, id fuel.TankID) (*fuel.Tank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTankLocked(id), nil
}

func (m *Memory) getTankLocked(id fuel.TankID) *fuel.Tank {
	tank, ok := m.tanks[id]
	if !ok {
		return nil
	}
	return &tank
}

func (m *Memory) ListTanks(_ context.Context) ([]fuel.Tank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listTanksLocked(), nil
}

func (m *Memory) listTanksLocked() []fuel.Tank {
	tanks := make([]fuel.Tank, 0, len(m.tanks))
	for _, t := range m.tanks {
		tanks = append(tanks, t)
	}
	sort.Slice(tanks, func(i, j int) bool {
		if tanks[i].Position != tanks[j].Position {
			return tanks[i].Position < tanks[j].Position
		}
		return tanks[i].CreatedAt.Before(tanks[j].CreatedAt)
	})
	return tanks
}

func (m *Memory) UpdateTankLevel(_ context.Context, id fuel.TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateTankLevelLocked(id, remaining, fueledAt, expectedVersion)
}

func (m *Memory) updateTankLevelLocked(id fuel.TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error {
	tank, ok := m.tanks[id]
	if !ok {
		return fuel.ErrTankNotFound
	}
	if tank.Version != expectedVersion {
		return fuel.ErrConcurrencyConflict
	}
	tank.Remaining = remaining
	tank.LastFuelingAt = fueledAt
	tank.Version++
	m.tanks[id] = tank
	return nil
}

func (m *Memory) UpdateTankPrice(_ context.Context, id fuel.TankID, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tank, ok := m.tanks[id]
	if !ok {
		return fuel.ErrTankNotFound
	}
	tank.UnitPrice = price
	m.tanks[id] = tank
	return nil
}

func (m *Memory) RetireTank(_ context.Context, id fuel.TankID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tank, ok := m.tanks[id]
	if !ok {
		return fuel.ErrTankNotFound
	}
	tank.Retired = true
	m.tanks[id] = tank
	return nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (m *Memory) AppendTransaction(_ context.Context, tx fuel.FuelTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(tx)
}

func (m *Memory) appendLocked(tx fuel.FuelTransaction) error {
	if tx.ReversalOf != "" {
		if m.reversed[tx.ReversalOf] {
			return fuel.ErrAlreadyReversed
		}
		m.reversed[tx.ReversalOf] = true
	}
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, id fuel.TransactionID) (*fuel.FuelTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.transactions {
		if m.transactions[i].ID == id {
			tx := m.transactions[i]
			return &tx, nil
		}
	}
	return nil, nil
}

func (m *Memory) QueryTransactions(_ context.Context, filter fuel.TransactionFilter, page fuel.Page) ([]fuel.FuelTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queryLocked(filter, page), nil
}

// queryLocked walks creation order backwards: newest-first for free.
func (m *Memory) queryLocked(filter fuel.TransactionFilter, page fuel.Page) []fuel.FuelTransaction {
	var result []fuel.FuelTransaction
	skipped := 0
	for i := len(m.transactions) - 1; i >= 0; i-- {
		tx := m.transactions[i]
		if !matches(tx, filter) {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		result = append(result, tx)
		if page.Limit > 0 && len(result) >= page.Limit {
			break
		}
	}
	return result
}

func matches(tx fuel.FuelTransaction, f fuel.TransactionFilter) bool {
	if f.TankID != nil && tx.TankID != *f.TankID {
		return false
	}
	if f.OperatorID != nil && tx.OperatorID != *f.OperatorID {
		return false
	}
	if f.BilledToID != nil && tx.BilledToID != *f.BilledToID {
		return false
	}
	if f.From != nil && tx.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func (m *Memory) IsReversed(_ context.Context, id fuel.TransactionID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reversed[id], nil
}

// =============================================================================
// IDENTITY DIRECTORY
// =============================================================================

func (m *Memory) GetIdentity(_ context.Context, id fuel.IdentityID) (*fuel.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ident, ok := m.identities[id]
	if !ok {
		return nil, nil
	}
	return &ident, nil
}

func (m *Memory) ListIdentities(_ context.Context) ([]fuel.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idents := make([]fuel.Identity, 0, len(m.identities))
	for _, i := range m.identities {
		idents = append(idents, i)
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i].Name < idents[j].Name })
	return idents, nil
}

func (m *Memory) SaveIdentity(_ context.Context, ident fuel.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[ident.ID] = ident
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction. For the memory store this is
// simulated with a snapshot restored on error. The store lock is held for
// the whole unit, which also gives fn an isolated view.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(fuel.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	tanks        map[fuel.TankID]fuel.Tank
	transactions []fuel.FuelTransaction
	reversed     map[fuel.TransactionID]bool
	identities   map[fuel.IdentityID]fuel.Identity
}

func (tm *TxMemory) snapshot() memorySnapshot {
	tanksCopy := make(map[fuel.TankID]fuel.Tank, len(tm.tanks))
	for k, v := range tm.tanks {
		tanksCopy[k] = v
	}
	reversedCopy := make(map[fuel.TransactionID]bool, len(tm.reversed))
	for k, v := range tm.reversed {
		reversedCopy[k] = v
	}
	identCopy := make(map[fuel.IdentityID]fuel.Identity, len(tm.identities))
	for k, v := range tm.identities {
		identCopy[k] = v
	}
	return memorySnapshot{
		tanks:        tanksCopy,
		transactions: append([]fuel.FuelTransaction{}, tm.transactions...),
		reversed:     reversedCopy,
		identities:   identCopy,
	}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.tanks = s.tanks
	tm.transactions = s.transactions
	tm.reversed = s.reversed
	tm.identities = s.identities
}

// txMemoryView routes store calls to the parent's unlocked internals
// while WithTx holds the lock.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) SaveTank(_ context.Context, tank fuel.Tank) error {
	tv.parent.tanks[tank.ID] = tank
	return nil
}

func (tv *txMemoryView) GetTank(_ context.Context, id fuel.TankID) (*fuel.Tank, error) {
	return tv.parent.getTankLocked(id), nil
}

func (tv *txMemoryView) ListTanks(_ context.Context) ([]fuel.Tank, error) {
	return tv.parent.listTanksLocked(), nil
}

func (tv *txMemoryView) UpdateTankLevel(_ context.Context, id fuel.TankID, remaining decimal.Decimal, fueledAt time.Time, expectedVersion int64) error {
	return tv.parent.updateTankLevelLocked(id, remaining, fueledAt, expectedVersion)
}

func (tv *txMemoryView) UpdateTankPrice(_ context.Context, id fuel.TankID, price decimal.Decimal) error {
	tank, ok := tv.parent.tanks[id]
	if !ok {
		return fuel.ErrTankNotFound
	}
	tank.UnitPrice = price
	tv.parent.tanks[id] = tank
	return nil
}

func (tv *txMemoryView) RetireTank(_ context.Context, id fuel.TankID) error {
	tank, ok := tv.parent.tanks[id]
	if !ok {
		return fuel.ErrTankNotFound
	}
	tank.Retired = true
	tv.parent.tanks[id] = tank
	return nil
}

func (tv *txMemoryView) AppendTransaction(_ context.Context, tx fuel.FuelTransaction) error {
	return tv.parent.appendLocked(tx)
}

func (tv *txMemoryView) GetTransaction(_ context.Context, id fuel.TransactionID) (*fuel.FuelTransaction, error) {
	for i := range tv.parent.transactions {
		if tv.parent.transactions[i].ID == id {
			tx := tv.parent.transactions[i]
			return &tx, nil
		}
	}
	return nil, nil
}

func (tv *txMemoryView) QueryTransactions(_ context.Context, filter fuel.TransactionFilter, page fuel.Page) ([]fuel.FuelTransaction, error) {
	return tv.parent.queryLocked(filter, page), nil
}

func (tv *txMemoryView) IsReversed(_ context.Context, id fuel.TransactionID) (bool, error) {
	return tv.parent.reversed[id], nil
}

func (tv *txMemoryView) GetIdentity(_ context.Context, id fuel.IdentityID) (*fuel.Identity, error) {
	ident, ok := tv.parent.identities[id]
	if !ok {
		return nil, nil
	}
	return &ident, nil
}

func (tv *txMemoryView) ListIdentities(_ context.Context) ([]fuel.Identity, error) {
	idents := make([]fuel.Identity, 0, len(tv.parent.identities))
	for _, i := range tv.parent.identities {
		idents = append(idents, i)
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i].Name < idents[j].Name })
	return idents, nil
}

func (tv *txMemoryView) SaveIdentity(_ context.Context, ident fuel.Identity) error {
	tv.parent.identities[ident.ID] = ident
	return nil
}
