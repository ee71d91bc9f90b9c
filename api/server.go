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
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the HR frontend

ROUTE GROUPS:
  /api/punches/*        Time clock imports
  /api/schedules/*      Schedule configs
  /api/payroll/*        Payroll overtime figures
  /api/attendance/*     Period computations
  /api/scenarios/*      Demo scenarios
  /api/scanner/*        Background scan results
  /api/health           Liveness

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions holds the optional parts of the router.
type RouterOptions struct {
	AllowedOrigins []string
	Scanner        *InconsistencyScanner
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Punch routes
		r.Route("/punches", func(r chi.Router) {
			r.Get("/", h.ListPunches)
			r.Post("/", h.ImportPunches)
		})

		// Schedule routes
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Post("/", h.CreateSchedules)
		})

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/overtime", h.SavePayrollOvertime)
		})

		// Attendance routes
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/inconsistencies", h.Inconsistencies)
			r.Get("/corrections", h.Corrections)
			r.Get("/adjustments", h.Adjustments)
			r.Get("/export", h.Export)
			r.Get("/summary", h.Summary)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenarioHandler)
			r.Post("/reset", h.ResetDatabase)
		})

		if opts.Scanner != nil {
			r.Get("/scanner/last", opts.Scanner.LastScan)
		}
	})

	return r
}
