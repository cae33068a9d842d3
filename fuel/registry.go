// registry.go - The tank catalog.
//
// Single source of truth for each tank's static attributes and its live
// level. The registry never mutates Remaining itself; that path belongs
// to the Ledger via the Guard.
package fuel

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Registry manages the catalog of fuel tanks.
type Registry struct {
	store Store
	now   func() time.Time
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store, now: time.Now}
}

// Get returns a tank by ID.
func (r *Registry) Get(ctx context.Context, id TankID) (Tank, error) {
	tank, err := r.store.GetTank(ctx, id)
	if err != nil {
		return Tank{}, err
	}
	if tank == nil {
		return Tank{}, ErrTankNotFound
	}
	return *tank, nil
}

// List returns all tanks in display order.
func (r *Registry) List(ctx context.Context) ([]Tank, error) {
	return r.store.ListTanks(ctx)
}

// Create registers a new tank with an empty level. Rare, admin path.
func (r *Registry) Create(ctx context.Context, label string, capacity, unitPrice decimal.Decimal, color string) (Tank, error) {
	if strings.TrimSpace(label) == "" {
		return Tank{}, &ValidationError{Field: "label", Message: "must not be empty"}
	}
	if !capacity.IsPositive() {
		return Tank{}, &ValidationError{Field: "capacity", Message: "must be positive"}
	}
	if unitPrice.IsNegative() {
		return Tank{}, &ValidationError{Field: "unitPrice", Message: "must not be negative"}
	}

	existing, err := r.store.ListTanks(ctx)
	if err != nil {
		return Tank{}, err
	}

	tank := Tank{
		ID:        TankID(uuid.NewString()),
		Label:     strings.TrimSpace(label),
		Color:     color,
		Capacity:  capacity,
		Remaining: decimal.Zero,
		UnitPrice: unitPrice,
		Position:  len(existing) + 1,
		Version:   1,
		CreatedAt: r.now().UTC(),
	}

	if err := r.store.SaveTank(ctx, tank); err != nil {
		return Tank{}, err
	}
	return tank, nil
}

// UpdatePrice changes the current unit price. Existing transactions keep
// the price they were appended with, so revenue history is unaffected.
func (r *Registry) UpdatePrice(ctx context.Context, id TankID, price decimal.Decimal) (Tank, error) {
	if price.IsNegative() {
		return Tank{}, &ValidationError{Field: "unitPrice", Message: "must not be negative"}
	}
	if _, err := r.Get(ctx, id); err != nil {
		return Tank{}, err
	}
	if err := r.store.UpdateTankPrice(ctx, id, price); err != nil {
		return Tank{}, err
	}
	return r.Get(ctx, id)
}

// Retire soft-retires a tank. Retired tanks reject new transactions but
// keep their history; tanks referenced by the ledger are never deleted.
func (r *Registry) Retire(ctx context.Context, id TankID) (Tank, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return Tank{}, err
	}
	if err := r.store.RetireTank(ctx, id); err != nil {
		return Tank{}, err
	}
	return r.Get(ctx, id)
}
