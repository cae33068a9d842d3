/*
handlers_test.go - HTTP-level tests for the fuel engine API

Tests exercise the full stack: router, handlers, domain logic, and the
SQLite store, using httptest against an in-memory database.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fuel-engine/api"
	"github.com/warp/fuel-engine/fuel"
	"github.com/warp/fuel-engine/identity"
	"github.com/warp/fuel-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, identity.Sync(context.Background(), store))

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(store)))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// createTank registers a tank over the API and fills it to the given level.
func createTank(t *testing.T, srv *httptest.Server, label string, capacity, fill float64) map[string]any {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/tanks", map[string]any{
		"label":      label,
		"capacity":   capacity,
		"unit_price": 2.50,
		"color":      "#3b82f6",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tank := decode[map[string]any](t, resp)

	if fill > 0 {
		resp = postJSON(t, srv.URL+"/api/transactions", map[string]any{
			"tank_id":      tank["id"],
			"operator_id":  "op-stefan",
			"aircraft_ref": "STATION",
			"amount":       -fill,
			"reason":       "initial fill",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	return tank
}

// =============================================================================
// TANK ENDPOINTS
// =============================================================================

func TestAPI_CreateAndListTanks(t *testing.T) {
	srv, _ := newTestServer(t)

	createTank(t, srv, "AVGAS 100LL", 4000, 1200)
	createTank(t, srv, "Jet A-1", 12000, 0)

	resp, err := http.Get(srv.URL + "/api/tanks")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tanks := decode[[]map[string]any](t, resp)
	require.Len(t, tanks, 2)
	assert.Equal(t, "AVGAS 100LL", tanks[0]["label"])
	assert.InDelta(t, 1200.0, tanks[0]["remaining"].(float64), 0.001)
	assert.InDelta(t, 30.0, tanks[0]["percent_full"].(float64), 0.001)
	assert.Equal(t, "Jet A-1", tanks[1]["label"])
}

func TestAPI_CreateTank_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/tanks", map[string]any{
		"label":    "",
		"capacity": 4000,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetTank_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/tanks/tank-ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_UpdatePriceAndRetire(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "Diesel", 2000, 500)
	id := tank["id"].(string)

	resp := postJSON(t, srv.URL+"/api/tanks/"+id+"/price", map[string]any{"unit_price": 2.10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[map[string]any](t, resp)
	assert.InDelta(t, 2.10, updated["unit_price"].(float64), 0.001)

	resp = postJSON(t, srv.URL+"/api/tanks/"+id+"/retire", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	retired := decode[map[string]any](t, resp)
	assert.Equal(t, true, retired["retired"])

	// A retired tank rejects new movements.
	resp = postJSON(t, srv.URL+"/api/transactions", map[string]any{
		"tank_id":      id,
		"operator_id":  "op-stefan",
		"aircraft_ref": "HB-KFQ",
		"amount":       50,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// LEDGER ENDPOINTS
// =============================================================================

func TestAPI_AppendConsumption(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 1200)

	resp := postJSON(t, srv.URL+"/api/transactions", map[string]any{
		"tank_id":      tank["id"],
		"operator_id":  "op-marie",
		"billed_to_id": "org-alpine-air",
		"aircraft_ref": "HB-JRA",
		"amount":       85,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[map[string]any](t, resp)

	assert.Equal(t, "HB-JRA", tx["aircraft_ref"])
	assert.Equal(t, "org-alpine-air", tx["billed_to_id"])
	assert.InDelta(t, 85.0, tx["amount"].(float64), 0.001)
	assert.InDelta(t, 2.50, tx["unit_price"].(float64), 0.001)
	assert.InDelta(t, 212.50, tx["total"].(float64), 0.001)

	// Level reflects the draw.
	getResp, err := http.Get(srv.URL + "/api/tanks/" + tank["id"].(string))
	require.NoError(t, err)
	got := decode[map[string]any](t, getResp)
	assert.InDelta(t, 1115.0, got["remaining"].(float64), 0.001)
}

func TestAPI_Append_ErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 100)
	id := tank["id"].(string)

	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name: "insufficient fuel",
			body: map[string]any{
				"tank_id": id, "operator_id": "op-stefan",
				"aircraft_ref": "HB-KFQ", "amount": 500,
			},
			status: http.StatusConflict,
		},
		{
			name: "over capacity",
			body: map[string]any{
				"tank_id": id, "operator_id": "op-stefan",
				"aircraft_ref": "STATION", "amount": -5000,
			},
			status: http.StatusConflict,
		},
		{
			name: "unknown payer",
			body: map[string]any{
				"tank_id": id, "operator_id": "op-stefan",
				"billed_to_id": "org-ghost",
				"aircraft_ref": "HB-KFQ", "amount": 10,
			},
			status: http.StatusBadRequest,
		},
		{
			name: "zero amount",
			body: map[string]any{
				"tank_id": id, "operator_id": "op-stefan",
				"aircraft_ref": "HB-KFQ", "amount": 0,
			},
			status: http.StatusBadRequest,
		},
		{
			name: "consumption without aircraft",
			body: map[string]any{
				"tank_id": id, "operator_id": "op-stefan",
				"aircraft_ref": "STATION", "amount": 10,
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown operator",
			body: map[string]any{
				"tank_id": id, "operator_id": "op-ghost",
				"aircraft_ref": "HB-KFQ", "amount": 10,
			},
			status: http.StatusNotFound,
		},
		{
			name: "unknown tank",
			body: map[string]any{
				"tank_id": "tank-ghost", "operator_id": "op-stefan",
				"aircraft_ref": "HB-KFQ", "amount": 10,
			},
			status: http.StatusNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/transactions", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAPI_ReverseTransaction(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 1200)

	resp := postJSON(t, srv.URL+"/api/transactions", map[string]any{
		"tank_id":      tank["id"],
		"operator_id":  "op-marie",
		"aircraft_ref": "HB-KFQ",
		"amount":       200,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orig := decode[map[string]any](t, resp)
	origID := orig["id"].(string)

	resp = postJSON(t, srv.URL+"/api/transactions/"+origID+"/reverse",
		map[string]any{"reason": "wrong aircraft"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comp := decode[map[string]any](t, resp)

	assert.InDelta(t, -200.0, comp["amount"].(float64), 0.001)
	assert.Equal(t, origID, comp["reversal_of"])

	// Second reversal conflicts.
	resp = postJSON(t, srv.URL+"/api/transactions/"+origID+"/reverse",
		map[string]any{"reason": "again"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Level restored.
	getResp, err := http.Get(srv.URL + "/api/tanks/" + tank["id"].(string))
	require.NoError(t, err)
	got := decode[map[string]any](t, getResp)
	assert.InDelta(t, 1200.0, got["remaining"].(float64), 0.001)
}

func TestAPI_TankHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 1200)
	id := tank["id"].(string)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/api/transactions", map[string]any{
			"tank_id": id, "operator_id": "op-marie",
			"aircraft_ref": "HB-KFQ", "amount": 10,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/tanks/%s/transactions?limit=2", srv.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[[]map[string]any](t, resp)
	assert.Len(t, page, 2)

	resp, err = http.Get(srv.URL + "/api/tanks/tank-ghost/transactions")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// STATISTICS ENDPOINTS
// =============================================================================

func TestAPI_MonthlySeries_Shape(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 1200)

	resp := postJSON(t, srv.URL+"/api/transactions", map[string]any{
		"tank_id": tank["id"], "operator_id": "op-marie",
		"aircraft_ref": "HB-KFQ", "amount": 85,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	getResp, err := http.Get(srv.URL + "/api/operators/op-marie/monthly?months=4")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	buckets := decode[[]map[string]any](t, getResp)
	require.Len(t, buckets, 4)
	for i := 0; i < 3; i++ {
		assert.Zero(t, buckets[i]["total"].(float64), "earlier months zero-filled")
	}
	assert.InDelta(t, 85.0, buckets[3]["total"].(float64), 0.001, "current month last")

	// An absurd window off the query string is clamped, not allocated.
	getResp, err = http.Get(srv.URL + "/api/operators/op-marie/monthly?months=10000000")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	buckets = decode[[]map[string]any](t, getResp)
	assert.Len(t, buckets, fuel.MaxSeriesMonths)
}

func TestAPI_UsageAndRevenue(t *testing.T) {
	srv, _ := newTestServer(t)
	avgas := createTank(t, srv, "AVGAS 100LL", 4000, 1200)
	jeta := createTank(t, srv, "Jet A-1", 12000, 9000)

	for _, body := range []map[string]any{
		{"tank_id": avgas["id"], "operator_id": "op-marie", "aircraft_ref": "HB-KFQ", "amount": 100},
		{"tank_id": jeta["id"], "operator_id": "op-marie", "aircraft_ref": "HB-JRA", "amount": 400},
	} {
		resp := postJSON(t, srv.URL+"/api/transactions", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/operators/op-marie/usage")
	require.NoError(t, err)
	usage := decode[[]map[string]any](t, resp)
	require.Len(t, usage, 2)
	assert.Equal(t, "Jet A-1", usage[0]["tank_label"], "largest first")

	resp, err = http.Get(srv.URL + "/api/revenue")
	require.NoError(t, err)
	revenue := decode[map[string]any](t, resp)
	// 100L + 400L, both at 2.50.
	assert.InDelta(t, 1250.0, revenue["total"].(float64), 0.001)
}

func TestAPI_Dashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 1200)

	resp := postJSON(t, srv.URL+"/api/transactions", map[string]any{
		"tank_id": tank["id"], "operator_id": "op-marie",
		"aircraft_ref": "HB-KFQ", "amount": 85,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	getResp, err := http.Get(srv.URL + "/api/dashboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	dash := decode[map[string]any](t, getResp)
	assert.Len(t, dash["tanks"], 1)
	recent := dash["recent_transactions"].([]any)
	assert.Len(t, recent, 2, "fill + consumption")
	assert.InDelta(t, 212.50, dash["total_revenue"].(float64), 0.001)
}

func TestAPI_TankDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	tank := createTank(t, srv, "AVGAS 100LL", 4000, 1200)
	other := createTank(t, srv, "Jet A-1", 12000, 6000)

	resp := postJSON(t, srv.URL+"/api/transactions", map[string]any{
		"tank_id": tank["id"], "operator_id": "op-marie",
		"aircraft_ref": "HB-KFQ", "amount": 85,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	getResp, err := http.Get(srv.URL + "/api/tanks/" + tank["id"].(string) + "/dashboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	dash := decode[map[string]any](t, getResp)
	gauge := dash["tank"].(map[string]any)
	assert.Equal(t, tank["id"], gauge["id"])
	assert.InDelta(t, 27.875, gauge["percent_full"].(float64), 0.001)
	assert.NotEmpty(t, gauge["last_fueling_at"])

	recent := dash["recent_transactions"].([]any)
	assert.Len(t, recent, 2, "only this tank's entries")
	for _, e := range recent {
		assert.Equal(t, tank["id"], e.(map[string]any)["tank_id"])
	}

	// other tank untouched by the consumption
	getResp, err = http.Get(srv.URL + "/api/tanks/" + other["id"].(string) + "/dashboard")
	require.NoError(t, err)
	otherDash := decode[map[string]any](t, getResp)
	assert.Len(t, otherDash["recent_transactions"], 1)

	getResp, err = http.Get(srv.URL + "/api/tanks/ghost/dashboard")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	getResp.Body.Close()
}

// =============================================================================
// IDENTITY ENDPOINT
// =============================================================================

func TestAPI_ListIdentities(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/identities")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	idents := decode[[]map[string]any](t, resp)
	assert.Len(t, idents, len(identity.Defaults()))
}

// =============================================================================
// SEED
// =============================================================================

func TestAPI_Seed_Idempotent(t *testing.T) {
	_, store := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, api.Seed(ctx, store))
	require.NoError(t, api.Seed(ctx, store))

	tanks, err := store.ListTanks(ctx)
	require.NoError(t, err)
	assert.Len(t, tanks, 3, "second seed must not duplicate tanks")

	// The seeded ledger balances: every tank's level within bounds.
	for _, tank := range tanks {
		assert.False(t, tank.Remaining.IsNegative())
		assert.True(t, tank.Remaining.LessThanOrEqual(tank.Capacity))
	}
}
