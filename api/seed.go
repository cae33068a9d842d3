/*
seed.go - Demo data loader for development and demonstrations

PURPOSE:
  Populates an empty database with realistic data: the station's three
  tanks, the standing identity directory, and a week of fueling
  activity. Gives the dashboard something to show on first run.

WHAT IT CREATES:
  Tanks:       AVGAS 100LL, Jet A-1, Diesel
  Identities:  Staff operators + billing organizations
  Ledger:      Deliveries from the station, consumptions by operators,
               one reversed mistake so the history shows a correction

IDEMPOTENCY:
  Seeding is skipped when any tank already exists. Identities are
  synced unconditionally (upsert).

NOTE:
  Only use in development/demo environments.

SEE ALSO:
  - cmd/server/main.go: -seed flag
  - identity/identity.go: Directory contents
*/
package api

import (
	"context"
	"fmt"

	"github.com/warp/fuel-engine/fuel"
	"github.com/warp/fuel-engine/identity"
)

// Seed populates the store with demo tanks, identities, and ledger
// activity. Safe to call on every startup: a non-empty tank catalog
// short-circuits everything but the identity sync.
func Seed(ctx context.Context, store fuel.TxStore) error {
	if err := identity.Sync(ctx, store); err != nil {
		return fmt.Errorf("seed identities: %w", err)
	}

	registry := fuel.NewRegistry(store)
	existing, err := registry.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	avgas, err := registry.Create(ctx, "AVGAS 100LL", fuel.Litres(4000), fuel.MustParseDecimal("2.85"), "#3b82f6")
	if err != nil {
		return err
	}
	jeta, err := registry.Create(ctx, "Jet A-1", fuel.Litres(12000), fuel.MustParseDecimal("2.30"), "#f59e0b")
	if err != nil {
		return err
	}
	diesel, err := registry.Create(ctx, "Diesel", fuel.Litres(2000), fuel.MustParseDecimal("1.95"), "#10b981")
	if err != nil {
		return err
	}

	ledger := fuel.NewLedger(store)

	// Deliveries first so the consumptions below have fuel to draw on.
	deliveries := []fuel.AppendRequest{
		{TankID: avgas.ID, OperatorID: "op-stefan", AircraftRef: fuel.StationRef(), Amount: fuel.Litres(-3000), Reason: "initial fill"},
		{TankID: jeta.ID, OperatorID: "op-stefan", AircraftRef: fuel.StationRef(), Amount: fuel.Litres(-9000), Reason: "initial fill"},
		{TankID: diesel.ID, OperatorID: "op-jonas", AircraftRef: fuel.StationRef(), Amount: fuel.Litres(-1500), Reason: "initial fill"},
	}
	for _, req := range deliveries {
		if _, err := ledger.Append(ctx, req); err != nil {
			return fmt.Errorf("seed delivery: %w", err)
		}
	}

	consumptions := []fuel.AppendRequest{
		{TankID: avgas.ID, OperatorID: "op-marie", AircraftRef: fuel.Aircraft("HB-KFQ"), Amount: fuel.Litres(85)},
		{TankID: avgas.ID, OperatorID: "op-marie", BilledToID: "org-flight-school", AircraftRef: fuel.Aircraft("HB-SFA"), Amount: fuel.Litres(62)},
		{TankID: jeta.ID, OperatorID: "op-stefan", BilledToID: "org-alpine-air", AircraftRef: fuel.Aircraft("HB-JRA"), Amount: fuel.Litres(640)},
		{TankID: jeta.ID, OperatorID: "op-jonas", BilledToID: "org-heli-west", AircraftRef: fuel.Aircraft("HB-ZKL"), Amount: fuel.Litres(310)},
		{TankID: diesel.ID, OperatorID: "op-jonas", AircraftRef: fuel.Aircraft("FUEL-TRUCK-1"), Amount: fuel.Litres(120), Reason: "bowser refill"},
	}
	for _, req := range consumptions {
		if _, err := ledger.Append(ctx, req); err != nil {
			return fmt.Errorf("seed consumption: %w", err)
		}
	}

	// One corrected mistake so the history demonstrates reversals.
	mistake, err := ledger.Append(ctx, fuel.AppendRequest{
		TankID:      avgas.ID,
		OperatorID:  "op-marie",
		AircraftRef: fuel.Aircraft("HB-KFQ"),
		Amount:      fuel.Litres(200),
	})
	if err != nil {
		return fmt.Errorf("seed mistake: %w", err)
	}
	if _, err := ledger.Reverse(ctx, mistake.ID, "wrong aircraft logged"); err != nil {
		return fmt.Errorf("seed reversal: %w", err)
	}

	return nil
}
