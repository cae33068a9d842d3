package fuel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fuel-engine/fuel"
	memstore "github.com/warp/fuel-engine/fuel/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// rawEntry writes a ledger entry directly so tests control timestamps.
func rawEntry(t *testing.T, store *memstore.TxMemory, id string, tank fuel.TankID, operator fuel.IdentityID, amount, price string, at time.Time) {
	t.Helper()
	require.NoError(t, store.AppendTransaction(context.Background(), fuel.FuelTransaction{
		ID:          fuel.TransactionID(id),
		TankID:      tank,
		OperatorID:  operator,
		BilledToID:  operator,
		AircraftRef: fuel.Aircraft("N7213G"),
		Amount:      fuel.MustParseDecimal(amount),
		UnitPrice:   fuel.MustParseDecimal(price),
		CreatedAt:   at,
	}))
}

// monthsAgo returns a timestamp inside the month n months before now.
func monthsAgo(n int) time.Time {
	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -n, 0).Add(36 * time.Hour)
}

// =============================================================================
// DISPLAY TOTAL TESTS
// =============================================================================

func TestDisplayedTotal_Consumption(t *testing.T) {
	tx := fuel.FuelTransaction{
		Amount:    fuel.Litres(50),
		UnitPrice: fuel.MustParseDecimal("2.50"),
	}
	assert.True(t, fuel.DisplayedTotal(tx).Equal(fuel.MustParseDecimal("125")))
}

func TestDisplayedTotal_Replenishment_ClampedToZero(t *testing.T) {
	// A delivery would multiply to a negative total; the display rule
	// clamps it at zero.
	tx := fuel.FuelTransaction{
		Amount:    fuel.Litres(-300),
		UnitPrice: fuel.MustParseDecimal("2.50"),
	}
	assert.True(t, fuel.DisplayedTotal(tx).IsZero())
}

func TestAggregateRevenue_ConsumptionOnly(t *testing.T) {
	// GIVEN: Two consumptions and one delivery
	// THEN: Revenue is the sum of the consumptions; the delivery adds nothing

	txs := []fuel.FuelTransaction{
		{Amount: fuel.Litres(50), UnitPrice: fuel.MustParseDecimal("2.50")},  // 125
		{Amount: fuel.Litres(-300), UnitPrice: fuel.MustParseDecimal("2.50")},
		{Amount: fuel.Litres(20), UnitPrice: fuel.MustParseDecimal("3.00")},  // 60
	}
	assert.True(t, fuel.AggregateRevenue(txs).Equal(fuel.MustParseDecimal("185")))
}

// =============================================================================
// MONTHLY SERIES TESTS
// =============================================================================

func TestMonthlySeries_ZeroFilled_OldestFirst(t *testing.T) {
	// GIVEN: Consumption in 3 of the last 6 months
	// WHEN: A 6-month series is requested
	// THEN: Exactly 6 buckets, oldest first, quiet months at zero

	store := memstore.NewTxMemory()
	seedTank(t, store, "tank-1", "5000", "4000", "2.50")

	rawEntry(t, store, "tx-1", "tank-1", "op-1", "100", "2.50", monthsAgo(5))
	rawEntry(t, store, "tx-2", "tank-1", "op-1", "40", "2.50", monthsAgo(2))
	rawEntry(t, store, "tx-3", "tank-1", "op-1", "60", "2.50", monthsAgo(2))
	rawEntry(t, store, "tx-4", "tank-1", "op-1", "25", "2.50", monthsAgo(0))

	agg := fuel.NewAggregator(store)
	buckets, err := agg.MonthlySeries(context.Background(), "op-1", 6)
	require.NoError(t, err)
	require.Len(t, buckets, 6)

	// Oldest first, months consecutive.
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i].Month.After(buckets[i-1].Month))
	}

	assert.True(t, buckets[0].Total.Equal(fuel.Litres(100)), "oldest month")
	assert.True(t, buckets[1].Total.IsZero())
	assert.True(t, buckets[2].Total.IsZero())
	assert.True(t, buckets[3].Total.Equal(fuel.Litres(100)), "two entries summed")
	assert.True(t, buckets[4].Total.IsZero())
	assert.True(t, buckets[5].Total.Equal(fuel.Litres(25)), "current month")
}

func TestMonthlySeries_DefaultsToSixMonths(t *testing.T) {
	store := memstore.NewTxMemory()
	agg := fuel.NewAggregator(store)

	buckets, err := agg.MonthlySeries(context.Background(), "op-1", 0)
	require.NoError(t, err)
	assert.Len(t, buckets, 6)
}

func TestMonthlySeries_ClampsOversizedWindow(t *testing.T) {
	// The window size comes straight off a query string; an absurd value
	// must not translate into an absurd allocation.

	store := memstore.NewTxMemory()
	agg := fuel.NewAggregator(store)

	buckets, err := agg.MonthlySeries(context.Background(), "op-1", 10_000_000)
	require.NoError(t, err)
	assert.Len(t, buckets, fuel.MaxSeriesMonths)

	buckets, err = agg.MonthlySeries(context.Background(), "op-1", fuel.MaxSeriesMonths)
	require.NoError(t, err)
	assert.Len(t, buckets, fuel.MaxSeriesMonths)
}

func TestMonthlySeries_ExcludesDeliveriesAndReversals(t *testing.T) {
	// Deliveries are not consumption; a compensating entry describes a
	// correction, not fuel pumped.

	store := memstore.NewTxMemory()
	seedTank(t, store, "tank-1", "5000", "4000", "2.50")

	now := monthsAgo(0)
	rawEntry(t, store, "tx-1", "tank-1", "op-1", "100", "2.50", now)
	rawEntry(t, store, "tx-2", "tank-1", "op-1", "-500", "2.50", now)

	// A reversed delivery: positive amount but a correction.
	require.NoError(t, store.AppendTransaction(context.Background(), fuel.FuelTransaction{
		ID:          "tx-3",
		TankID:      "tank-1",
		OperatorID:  "op-1",
		BilledToID:  "op-1",
		AircraftRef: fuel.StationRef(),
		Amount:      fuel.Litres(500),
		UnitPrice:   fuel.MustParseDecimal("2.50"),
		ReversalOf:  "tx-2",
		CreatedAt:   now,
	}))

	agg := fuel.NewAggregator(store)
	buckets, err := agg.MonthlySeries(context.Background(), "op-1", 1)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Total.Equal(fuel.Litres(100)))
}

// =============================================================================
// USAGE BY FUEL TYPE TESTS
// =============================================================================

func TestUsageByFuelType_SortedDescending(t *testing.T) {
	store := memstore.NewTxMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveTank(ctx, fuel.Tank{
		ID: "tank-avgas", Label: "AVGAS 100LL", Color: "#3b82f6",
		Capacity: fuel.Litres(4000), Remaining: fuel.Litres(3000),
		UnitPrice: fuel.MustParseDecimal("2.85"), Version: 1,
	}))
	require.NoError(t, store.SaveTank(ctx, fuel.Tank{
		ID: "tank-jeta", Label: "Jet A-1", Color: "#f59e0b",
		Capacity: fuel.Litres(12000), Remaining: fuel.Litres(9000),
		UnitPrice: fuel.MustParseDecimal("2.30"), Version: 1,
	}))
	require.NoError(t, store.SaveTank(ctx, fuel.Tank{
		ID: "tank-diesel", Label: "Diesel",
		Capacity: fuel.Litres(2000), Remaining: fuel.Litres(1500),
		UnitPrice: fuel.MustParseDecimal("1.95"), Version: 1,
	}))

	now := time.Now().UTC()
	rawEntry(t, store, "tx-1", "tank-avgas", "op-1", "85", "2.85", now)
	rawEntry(t, store, "tx-2", "tank-avgas", "op-1", "62", "2.85", now)
	rawEntry(t, store, "tx-3", "tank-jeta", "op-1", "640", "2.30", now)
	// Another operator's activity must not leak in.
	rawEntry(t, store, "tx-4", "tank-jeta", "op-2", "310", "2.30", now)

	agg := fuel.NewAggregator(store)
	usage, err := agg.UsageByFuelType(ctx, "op-1")
	require.NoError(t, err)

	// Diesel never drawn: omitted. Jet A-1 before AVGAS.
	require.Len(t, usage, 2)
	assert.Equal(t, "Jet A-1", usage[0].TankLabel)
	assert.True(t, usage[0].Total.Equal(fuel.Litres(640)))
	assert.Equal(t, "AVGAS 100LL", usage[1].TankLabel)
	assert.True(t, usage[1].Total.Equal(fuel.Litres(147)))
}

// =============================================================================
// REVENUE TESTS
// =============================================================================

func TestRevenue_OverPeriod(t *testing.T) {
	store := memstore.NewTxMemory()
	seedTank(t, store, "tank-1", "5000", "4000", "2.50")

	old := time.Now().UTC().AddDate(0, -3, 0)
	recent := time.Now().UTC().Add(-time.Hour)
	rawEntry(t, store, "tx-1", "tank-1", "op-1", "100", "2.00", old)    // 200
	rawEntry(t, store, "tx-2", "tank-1", "op-1", "50", "3.00", recent)  // 150
	rawEntry(t, store, "tx-3", "tank-1", "op-1", "-400", "3.00", recent)

	agg := fuel.NewAggregator(store)
	ctx := context.Background()

	total, err := agg.Revenue(ctx, nil, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(fuel.MustParseDecimal("350")))

	from := time.Now().UTC().AddDate(0, -1, 0)
	windowed, err := agg.Revenue(ctx, &from, nil)
	require.NoError(t, err)
	assert.True(t, windowed.Equal(fuel.MustParseDecimal("150")))
}

// =============================================================================
// PERCENT FULL TESTS
// =============================================================================

func TestPercentFull(t *testing.T) {
	tank := fuel.Tank{Capacity: fuel.Litres(550), Remaining: fuel.Litres(275)}
	assert.InDelta(t, 50.0, tank.PercentFull(), 0.001)

	empty := fuel.Tank{Capacity: fuel.Litres(550)}
	assert.Equal(t, 0.0, empty.PercentFull())

	zeroCapacity := fuel.Tank{}
	assert.Equal(t, 0.0, zeroCapacity.PercentFull())

	// Fractional capacities divide by the real capacity, not a floor of 1.
	small := fuel.Tank{
		Capacity:  fuel.MustParseDecimal("0.5"),
		Remaining: fuel.MustParseDecimal("0.25"),
	}
	assert.InDelta(t, 50.0, small.PercentFull(), 0.001)
}
