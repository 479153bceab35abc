/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. RequestLogger: zap line per request (method, path, status, duration)
  3. Recoverer:   Panic recovery (500 instead of crash)
  4. CORS:        Cross-origin requests for the frontend
  5. Instrument:  Prometheus request count and latency per route pattern

ROUTE GROUPS:
  /api/health, /api/dashboard   Status and home page numbers
  /api/auth/verify              Admin password exchange (rate limited)
  /api/employees/*              Employee management
  /api/scores/*                 Behavior score ledger
  /api/recruitment/*            Candidate pipeline
  /api/awards/*                 Annual awards, generation and statistics
  /api/scenarios/*              Demo scenarios
  /metrics                      Prometheus scrape endpoint

STATIC ROUTES FIRST:
  Fixed segments (/overview, /statistics, /generate, ...) are registered
  before /{id} in each group for readability. chi prefers static segments
  over parameters regardless of order.

SECURITY:
  Deletes, the unmasked id card, forced regeneration and database reset
  require an admin token (see auth.go).

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. corsOrigins
// lists the allowed frontend origins.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(Instrument(h.Metrics))

	admin := h.Auth.RequireAdmin

	r.Handle("/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/dashboard", h.Dashboard)

		r.Route("/auth", func(r chi.Router) {
			if h.Auth != nil {
				r.Use(h.Auth.RateLimit)
			}
			r.Post("/verify", h.VerifyPassword)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/overview", h.GetEmployeeOverview)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.With(admin).Delete("/{id}", h.DeleteEmployee)
			r.With(admin).Get("/{id}/id-card", h.GetEmployeeIDCard)
			r.Get("/{id}/scores", h.ListEmployeeScores)
			r.Get("/{id}/awards", h.ListEmployeeAwards)
		})

		// Score ledger routes
		r.Route("/scores", func(r chi.Router) {
			r.Get("/", h.ListScores)
			r.Post("/", h.CreateScore)
			r.Get("/behaviors", h.ListBehaviors)
			r.Get("/statistics", h.GetScoreStatistics)
			r.Get("/{id}", h.GetScore)
			r.Put("/{id}", h.UpdateScore)
			r.With(admin).Delete("/{id}", h.DeleteScore)
		})

		// Recruitment routes
		r.Route("/recruitment", func(r chi.Router) {
			r.Get("/", h.ListRecruitment)
			r.Post("/", h.CreateRecruitment)
			r.Get("/statistics", h.GetRecruitmentStatistics)
			r.Get("/{id}", h.GetRecruitment)
			r.Put("/{id}", h.UpdateRecruitment)
			r.With(admin).Delete("/{id}", h.DeleteRecruitment)
		})

		// Award routes
		r.Route("/awards", func(r chi.Router) {
			r.Get("/", h.ListAwards)
			r.Post("/", h.CreateAward)
			r.Post("/generate", h.GenerateAwards)
			r.Get("/statistics", h.GetAwardStatistics)
			r.Get("/tiers", h.GetTiers)
			r.Get("/{id}", h.GetAward)
			r.Put("/{id}", h.UpdateAward)
			r.With(admin).Delete("/{id}", h.DeleteAward)
			r.Get("/{id}/certificate", h.GetCertificate)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.With(admin).Post("/reset", h.ResetDatabase)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found", Code: CodeNotFound})
	})

	return r
}
