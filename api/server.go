/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the portal frontend

ROUTE GROUPS:
  /api/tanks/*         Tank catalog + per-tank ledger history
  /api/transactions/*  Append-only ledger
  /api/operators/*     Per-operator statistics
  /api/revenue         Station revenue
  /api/dashboard       Landing-page bundle
  /api/identities      Operator/organization directory
  /metrics             Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Tank routes
		r.Route("/tanks", func(r chi.Router) {
			r.Get("/", h.ListTanks)
			r.Post("/", h.CreateTank)
			r.Get("/{id}", h.GetTank)
			r.Get("/{id}/dashboard", h.GetTankDashboard)
			r.Put("/{id}/price", h.UpdateTankPrice)
			r.Post("/{id}/price", h.UpdateTankPrice)
			r.Post("/{id}/retire", h.RetireTank)
			r.Get("/{id}/transactions", h.GetTankTransactions)
		})

		// Ledger routes
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.QueryTransactions)
			r.Post("/", h.AppendTransaction)
			r.Get("/{id}", h.GetTransaction)
			r.Post("/{id}/reverse", h.ReverseTransaction)
		})

		// Per-operator statistics
		r.Route("/operators", func(r chi.Router) {
			r.Get("/{id}/monthly", h.GetMonthlySeries)
			r.Get("/{id}/usage", h.GetUsageByFuelType)
		})

		r.Get("/revenue", h.GetRevenue)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/identities", h.ListIdentities)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
