/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Tanks:
    TankDTO, CreateTankRequest, UpdatePriceRequest

  Transactions:
    TransactionDTO, AppendTransactionRequest, ReverseTransactionRequest

  Statistics:
    MonthBucketDTO, FuelUsageDTO, RevenueDTO, DashboardDTO

  Identities:
    IdentityDTO

QUANTITIES:
  Fuel quantities and money travel as JSON numbers. decimal.Decimal
  handles the precision internally; DTOs expose float64 because that is
  what the dashboard charts consume.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - fuel/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/warp/fuel-engine/fuel"
)

// =============================================================================
// TANK TYPES
// =============================================================================

// TankDTO represents a tank in API responses.
type TankDTO struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	Color         string  `json:"color,omitempty"`
	Capacity      float64 `json:"capacity"`
	Remaining     float64 `json:"remaining"`
	PercentFull   float64 `json:"percent_full"`
	UnitPrice     float64 `json:"unit_price"`
	Position      int     `json:"position"`
	Retired       bool    `json:"retired"`
	LastFuelingAt string  `json:"last_fueling_at,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// CreateTankRequest is the request to register a tank.
type CreateTankRequest struct {
	Label     string  `json:"label"`
	Capacity  float64 `json:"capacity"`
	UnitPrice float64 `json:"unit_price"`
	Color     string  `json:"color"`
}

// UpdatePriceRequest changes a tank's current unit price.
type UpdatePriceRequest struct {
	UnitPrice float64 `json:"unit_price"`
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// TransactionDTO represents a ledger entry in API responses.
type TransactionDTO struct {
	ID          string  `json:"id"`
	TankID      string  `json:"tank_id"`
	OperatorID  string  `json:"operator_id"`
	BilledToID  string  `json:"billed_to_id"`
	AircraftRef string  `json:"aircraft_ref"`
	Amount      float64 `json:"amount"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	Reason      string  `json:"reason,omitempty"`
	ReversalOf  string  `json:"reversal_of,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// AppendTransactionRequest records a fuel movement.
// Positive amount = consumption (aircraft_ref is a tail number),
// negative amount = replenishment (aircraft_ref must be "STATION").
type AppendTransactionRequest struct {
	TankID      string  `json:"tank_id"`
	OperatorID  string  `json:"operator_id"`
	BilledToID  string  `json:"billed_to_id"`
	AircraftRef string  `json:"aircraft_ref"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
}

// ReverseTransactionRequest appends a compensating entry.
type ReverseTransactionRequest struct {
	Reason string `json:"reason"`
}

// =============================================================================
// STATISTICS TYPES
// =============================================================================

// MonthBucketDTO is one point of a monthly consumption series.
type MonthBucketDTO struct {
	Label string  `json:"label"`
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// FuelUsageDTO is an operator's total consumption for one fuel type.
type FuelUsageDTO struct {
	TankID    string  `json:"tank_id"`
	TankLabel string  `json:"tank_label"`
	Color     string  `json:"color,omitempty"`
	Total     float64 `json:"total"`
}

// RevenueDTO is the station revenue over a period.
type RevenueDTO struct {
	Total float64 `json:"total"`
	From  string  `json:"from,omitempty"`
	To    string  `json:"to,omitempty"`
}

// DashboardDTO bundles everything the portal's landing page needs in
// one round trip.
type DashboardDTO struct {
	Tanks        []TankDTO        `json:"tanks"`
	Recent       []TransactionDTO `json:"recent_transactions"`
	TotalRevenue float64          `json:"total_revenue"`
}

// TankDashboardDTO is the gauge view for a single tank.
type TankDashboardDTO struct {
	Tank   TankDTO          `json:"tank"`
	Recent []TransactionDTO `json:"recent_transactions"`
}

// =============================================================================
// IDENTITY TYPES
// =============================================================================

// IdentityDTO represents an operator or billable organization.
type IdentityDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPING
// =============================================================================

func toTankDTO(t fuel.Tank) TankDTO {
	dto := TankDTO{
		ID:          string(t.ID),
		Label:       t.Label,
		Color:       t.Color,
		Capacity:    t.Capacity.InexactFloat64(),
		Remaining:   t.Remaining.InexactFloat64(),
		PercentFull: t.PercentFull(),
		UnitPrice:   t.UnitPrice.InexactFloat64(),
		Position:    t.Position,
		Retired:     t.Retired,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if !t.LastFuelingAt.IsZero() {
		dto.LastFuelingAt = t.LastFuelingAt.Format(time.RFC3339)
	}
	return dto
}

func toTransactionDTO(tx fuel.FuelTransaction) TransactionDTO {
	return TransactionDTO{
		ID:          string(tx.ID),
		TankID:      string(tx.TankID),
		OperatorID:  string(tx.OperatorID),
		BilledToID:  string(tx.BilledToID),
		AircraftRef: tx.AircraftRef.String(),
		Amount:      tx.Amount.InexactFloat64(),
		UnitPrice:   tx.UnitPrice.InexactFloat64(),
		Total:       fuel.DisplayedTotal(tx).InexactFloat64(),
		Reason:      tx.Reason,
		ReversalOf:  string(tx.ReversalOf),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(txs []fuel.FuelTransaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toIdentityDTO(ident fuel.Identity) IdentityDTO {
	return IdentityDTO{
		ID:   string(ident.ID),
		Name: ident.Name,
		Kind: string(ident.Kind),
	}
}
