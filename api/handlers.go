/*
handlers.go - HTTP API handlers for the fuel inventory and ledger engine

PURPOSE:
  Exposes the fuel engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Tanks:
    GET    /api/tanks                       List all tanks
    POST   /api/tanks                       Register a tank
    GET    /api/tanks/{id}                  Tank details
    POST   /api/tanks/{id}/price            Update current unit price
    POST   /api/tanks/{id}/retire           Soft-retire a tank
    GET    /api/tanks/{id}/transactions     Tank ledger history

  Transactions:
    GET    /api/transactions                Query the ledger (filters + paging)
    POST   /api/transactions                Append a fuel movement
    GET    /api/transactions/{id}           Single entry
    POST   /api/transactions/{id}/reverse   Compensating entry

  Statistics:
    GET    /api/operators/{id}/monthly      Monthly consumption series
    GET    /api/operators/{id}/usage        Usage by fuel type
    GET    /api/revenue                     Station revenue
    GET    /api/dashboard                   Landing-page bundle

  Identities:
    GET    /api/identities                  Operators and organizations

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (registry, ledger, aggregator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unknown payer, invalid input
  - 404: Tank / transaction / identity not found
  - 409: Insufficient fuel, over capacity, already reversed,
         retired tank, concurrent write conflict
  - 500: Storage and other internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  Identity is taken from the request body, trusted as-is.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - fuel/ledger.go: Append/reverse semantics
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/fuel-engine/fuel"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      fuel.TxStore
	Registry   *fuel.Registry
	Ledger     *fuel.Ledger
	Aggregator *fuel.Aggregator
}

// NewHandler creates a new handler with the given store.
func NewHandler(store fuel.TxStore) *Handler {
	registerMetrics()
	return &Handler{
		Store:      store,
		Registry:   fuel.NewRegistry(store),
		Ledger:     fuel.NewLedger(store),
		Aggregator: fuel.NewAggregator(store),
	}
}

// =============================================================================
// TANK HANDLERS
// =============================================================================

// ListTanks returns all tanks in display order.
func (h *Handler) ListTanks(w http.ResponseWriter, r *http.Request) {
	tanks, err := h.Registry.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]TankDTO, len(tanks))
	for i, t := range tanks {
		dtos[i] = toTankDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTank returns a single tank.
func (h *Handler) GetTank(w http.ResponseWriter, r *http.Request) {
	id := fuel.TankID(chi.URLParam(r, "id"))

	tank, err := h.Registry.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTankDTO(tank))
}

// CreateTank registers a new tank.
func (h *Handler) CreateTank(w http.ResponseWriter, r *http.Request) {
	var req CreateTankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tank, err := h.Registry.Create(r.Context(),
		req.Label,
		decimal.NewFromFloat(req.Capacity),
		decimal.NewFromFloat(req.UnitPrice),
		req.Color,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTankDTO(tank))
}

// UpdateTankPrice changes a tank's current unit price. Existing ledger
// entries keep the price they were appended with.
func (h *Handler) UpdateTankPrice(w http.ResponseWriter, r *http.Request) {
	id := fuel.TankID(chi.URLParam(r, "id"))

	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tank, err := h.Registry.UpdatePrice(r.Context(), id, decimal.NewFromFloat(req.UnitPrice))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTankDTO(tank))
}

// RetireTank soft-retires a tank.
func (h *Handler) RetireTank(w http.ResponseWriter, r *http.Request) {
	id := fuel.TankID(chi.URLParam(r, "id"))

	tank, err := h.Registry.Retire(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTankDTO(tank))
}

// GetTankTransactions returns a tank's ledger history, newest-first.
func (h *Handler) GetTankTransactions(w http.ResponseWriter, r *http.Request) {
	id := fuel.TankID(chi.URLParam(r, "id"))

	// 404 for unknown tanks rather than an empty list
	if _, err := h.Registry.Get(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	filter := fuel.TransactionFilter{TankID: &id}
	page := parsePage(r)

	txs, err := h.Ledger.History(r.Context(), filter, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// GetTankDashboard returns the gauge view for a single tank: the tank with
// its fill percentage and last-fueling timestamp, plus its most recent
// ledger entries.
func (h *Handler) GetTankDashboard(w http.ResponseWriter, r *http.Request) {
	id := fuel.TankID(chi.URLParam(r, "id"))

	tank, err := h.Registry.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recent, err := h.Ledger.History(r.Context(),
		fuel.TransactionFilter{TankID: &id},
		fuel.Page{Limit: 10},
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TankDashboardDTO{
		Tank:   toTankDTO(tank),
		Recent: toTransactionDTOs(recent),
	})
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// QueryTransactions returns ledger entries matching the query filters,
// newest-first.
func (h *Handler) QueryTransactions(w http.ResponseWriter, r *http.Request) {
	var filter fuel.TransactionFilter

	q := r.URL.Query()
	if v := q.Get("tank_id"); v != "" {
		id := fuel.TankID(v)
		filter.TankID = &id
	}
	if v := q.Get("operator_id"); v != "" {
		id := fuel.IdentityID(v)
		filter.OperatorID = &id
	}
	if v := q.Get("billed_to_id"); v != "" {
		id := fuel.IdentityID(v)
		filter.BilledToID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'from' timestamp", err)
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'to' timestamp", err)
			return
		}
		filter.To = &t
	}

	txs, err := h.Ledger.History(r.Context(), filter, parsePage(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// AppendTransaction records a fuel movement.
func (h *Handler) AppendTransaction(w http.ResponseWriter, r *http.Request) {
	var req AppendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := h.Ledger.Append(r.Context(), fuel.AppendRequest{
		TankID:      fuel.TankID(req.TankID),
		OperatorID:  fuel.IdentityID(req.OperatorID),
		BilledToID:  fuel.IdentityID(req.BilledToID),
		AircraftRef: fuel.ParseAircraftRef(req.AircraftRef),
		Amount:      decimal.NewFromFloat(req.Amount),
		Reason:      req.Reason,
	})
	appendsTotal.WithLabelValues(appendOutcome(err)).Inc()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// GetTransaction returns a single ledger entry.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := fuel.TransactionID(chi.URLParam(r, "id"))

	tx, err := h.Ledger.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// ReverseTransaction appends a compensating entry for an existing one.
func (h *Handler) ReverseTransaction(w http.ResponseWriter, r *http.Request) {
	id := fuel.TransactionID(chi.URLParam(r, "id"))

	var req ReverseTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := h.Ledger.Reverse(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	reversalsTotal.Inc()
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetMonthlySeries returns an operator's monthly consumption totals,
// oldest-first, zero-filled. The window defaults to 6 months and is
// capped at fuel.MaxSeriesMonths.
// GET /api/operators/{id}/monthly?months=6
func (h *Handler) GetMonthlySeries(w http.ResponseWriter, r *http.Request) {
	operatorID := fuel.IdentityID(chi.URLParam(r, "id"))
	months := intParam(r, "months", 0)

	buckets, err := h.Aggregator.MonthlySeries(r.Context(), operatorID, months)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]MonthBucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = MonthBucketDTO{
			Label: b.Label,
			Month: b.Month.Format("2006-01"),
			Total: b.Total.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUsageByFuelType returns an operator's consumption per fuel type,
// largest first.
// GET /api/operators/{id}/usage
func (h *Handler) GetUsageByFuelType(w http.ResponseWriter, r *http.Request) {
	operatorID := fuel.IdentityID(chi.URLParam(r, "id"))

	usage, err := h.Aggregator.UsageByFuelType(r.Context(), operatorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]FuelUsageDTO, len(usage))
	for i, u := range usage {
		dtos[i] = FuelUsageDTO{
			TankID:    string(u.TankID),
			TankLabel: u.TankLabel,
			Color:     u.Color,
			Total:     u.Total.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRevenue returns the station's revenue over an optional period.
// GET /api/revenue?from=...&to=...
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'from' timestamp", err)
			return
		}
		from = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'to' timestamp", err)
			return
		}
		to = &t
	}

	total, err := h.Aggregator.Revenue(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := RevenueDTO{Total: total.InexactFloat64()}
	if from != nil {
		dto.From = from.Format(time.RFC3339)
	}
	if to != nil {
		dto.To = to.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetDashboard bundles tanks, recent activity, and total revenue.
// GET /api/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tanks, err := h.Registry.List(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recent, err := h.Ledger.History(ctx, fuel.TransactionFilter{}, fuel.Page{Limit: 10})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	revenue, err := h.Aggregator.Revenue(ctx, nil, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := DashboardDTO{
		Tanks:        make([]TankDTO, len(tanks)),
		Recent:       toTransactionDTOs(recent),
		TotalRevenue: revenue.InexactFloat64(),
	}
	for i, t := range tanks {
		dto.Tanks[i] = toTankDTO(t)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// IDENTITY HANDLERS
// =============================================================================

// ListIdentities returns all known operators and organizations.
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	idents, err := h.Store.ListIdentities(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]IdentityDTO, len(idents))
	for i, ident := range idents {
		dtos[i] = toIdentityDTO(ident)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fuel.ErrValidation), errors.Is(err, fuel.ErrUnknownPayer):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case fuel.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case fuel.IsRetryable(err):
		// The same request may succeed once the racing writer finishes.
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, fuel.ErrInsufficientFuel),
		errors.Is(err, fuel.ErrOverCapacity),
		errors.Is(err, fuel.ErrAlreadyReversed),
		errors.Is(err, fuel.ErrTankRetired):
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func appendOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeAccepted
	case errors.Is(err, fuel.ErrInsufficientFuel):
		return outcomeInsufficient
	case errors.Is(err, fuel.ErrOverCapacity):
		return outcomeOverCapacity
	case fuel.IsRetryable(err):
		return outcomeConflict
	default:
		return outcomeRejected
	}
}

func parsePage(r *http.Request) fuel.Page {
	return fuel.Page{
		Limit:  intParam(r, "limit", 0),
		Offset: intParam(r, "offset", 0),
	}
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// parseTimeParam accepts RFC3339 timestamps or bare dates.
func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
