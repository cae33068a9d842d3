/*
metrics.go - Derived read-only views over the registry and ledger

PURPOSE:
  Computes everything the dashboards show without mutating any state:
  percent-full gauges, per-transaction display totals, monthly consumption
  series, per-fuel-type usage, and aggregate revenue.

KEY RULES:
  - Display totals are amount x the price snapshotted on the entry,
    clamped at zero: a replenishment never shows as negative revenue.
  - Revenue sums consumption entries only.
  - The monthly series is a trailing window anchored at the current
    month, zero-filled and oldest-first, so a chart always gets exactly
    the number of buckets it asked for.
  - Compensating entries are excluded from consumption statistics; the
    numbers describe what operators actually pumped.

Reads here may run concurrently with appends. They see some committed
state, never a half-applied mutation; a read is allowed to lag an append
by a moment.

SEE ALSO:
  - ledger.go: Where the entries come from
  - types.go:  Tank.PercentFull
*/
package fuel

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MonthBucket is one point of a monthly consumption series.
type MonthBucket struct {
	Label string    // e.g. "Mar 2026"
	Month time.Time // first instant of the month, UTC
	Total decimal.Decimal
}

// Default and maximum window sizes for the monthly series.
const (
	DefaultSeriesMonths = 6
	MaxSeriesMonths     = 120
)

// FuelTypeUsage is an operator's cumulative consumption of one fuel type.
type FuelTypeUsage struct {
	TankID    TankID
	TankLabel string
	Color     string
	Total     decimal.Decimal
}

// DisplayedTotal is the monetary value shown for a single entry: amount
// times the price captured at append time, clamped at zero so that
// replenishments (negative amounts) display as 0 rather than negative
// revenue.
func DisplayedTotal(tx FuelTransaction) decimal.Decimal {
	total := tx.Amount.Mul(tx.UnitPrice)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// AggregateRevenue sums DisplayedTotal over consumption entries.
// Replenishments contribute nothing.
func AggregateRevenue(txs []FuelTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			total = total.Add(DisplayedTotal(tx))
		}
	}
	return total
}

// Aggregator computes derived views from the store.
type Aggregator struct {
	store Store
	now   func() time.Time
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// MonthlySeries returns an operator's consumption bucketed by calendar
// month over a trailing window anchored at the current month. Months
// with no activity are zero-filled; buckets are oldest-first and there
// are always exactly `months` of them. A non-positive months defaults
// to DefaultSeriesMonths; anything above MaxSeriesMonths is clamped.
func (a *Aggregator) MonthlySeries(ctx context.Context, operatorID IdentityID, months int) ([]MonthBucket, error) {
	if months <= 0 {
		months = DefaultSeriesMonths
	}
	if months > MaxSeriesMonths {
		months = MaxSeriesMonths
	}

	now := a.now().UTC()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := anchor.AddDate(0, -(months - 1), 0)

	txs, err := a.store.QueryTransactions(ctx, TransactionFilter{
		OperatorID: &operatorID,
		From:       &start,
	}, Page{})
	if err != nil {
		return nil, err
	}

	buckets := make([]MonthBucket, months)
	index := make(map[time.Time]int, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0)
		buckets[i] = MonthBucket{Label: m.Format("Jan 2006"), Month: m, Total: decimal.Zero}
		index[m] = i
	}

	for _, tx := range txs {
		if !tx.Amount.IsPositive() || tx.IsReversal() {
			continue
		}
		m := time.Date(tx.CreatedAt.Year(), tx.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		if i, ok := index[m]; ok {
			buckets[i].Total = buckets[i].Total.Add(tx.Amount)
		}
	}

	return buckets, nil
}

// UsageByFuelType returns an operator's cumulative consumption per fuel
// type, sorted descending by total. Tanks the operator never drew from
// are omitted.
func (a *Aggregator) UsageByFuelType(ctx context.Context, operatorID IdentityID) ([]FuelTypeUsage, error) {
	txs, err := a.store.QueryTransactions(ctx, TransactionFilter{
		OperatorID: &operatorID,
	}, Page{})
	if err != nil {
		return nil, err
	}

	totals := make(map[TankID]decimal.Decimal)
	for _, tx := range txs {
		if !tx.Amount.IsPositive() || tx.IsReversal() {
			continue
		}
		totals[tx.TankID] = totals[tx.TankID].Add(tx.Amount)
	}

	tanks, err := a.store.ListTanks(ctx)
	if err != nil {
		return nil, err
	}

	var usage []FuelTypeUsage
	for _, tank := range tanks {
		total, ok := totals[tank.ID]
		if !ok || total.IsZero() {
			continue
		}
		usage = append(usage, FuelTypeUsage{
			TankID:    tank.ID,
			TankLabel: tank.Label,
			Color:     tank.Color,
			Total:     total,
		})
	}

	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Total.Equal(usage[j].Total) {
			return usage[i].TankLabel < usage[j].TankLabel
		}
		return usage[i].Total.GreaterThan(usage[j].Total)
	})

	return usage, nil
}

// Revenue sums displayed consumption totals over an optional date range.
func (a *Aggregator) Revenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error) {
	txs, err := a.store.QueryTransactions(ctx, TransactionFilter{From: from, To: to}, Page{})
	if err != nil {
		return decimal.Zero, err
	}
	return AggregateRevenue(txs), nil
}
