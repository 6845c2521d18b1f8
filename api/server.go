/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/operations/*   Operation CRUD, CSV export/import
  /api/transfers      Internal transfer creation
  /api/balance, /api/timeline, /api/performance, /api/summary
  /api/debts          Per-person debt summary
  /api/lists/*        Categories / banks / account types / people
  /api/autocat/*      Auto-categorize rules
  /api/recurring/*    Recurring rules, materialize, preview
  /api/forecast/*     Forecast items, projection, settings
  /api/backup/*       Cloud sync status, backup, restore, conflict
  /api/wipe           Clear the operation history

SECURITY NOTE:
  No authentication middleware. This is a single-user local engine; the
  server binds for one operator.

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

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Operations
		r.Route("/operations", func(r chi.Router) {
			r.Get("/", h.ListOperations)
			r.Post("/", h.CreateOperation)
			r.Get("/export", h.ExportCSV)
			r.Post("/import", h.ImportCSV)
			r.Patch("/{id}", h.UpdateOperation)
			r.Delete("/{id}", h.DeleteOperation)
			r.Post("/{id}/convert-transfer", h.ConvertTransfer)
		})

		// Transfers
		r.Post("/transfers", h.CreateTransfer)

		// Balance and statistics
		r.Get("/balance", h.GetBalance)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/performance", h.GetPerformance)
		r.Get("/summary", h.GetSummary)
		r.Get("/debts", h.GetDebts)

		// Lists and category metadata
		r.Route("/lists", func(r chi.Router) {
			r.Get("/{name}", h.GetList)
			r.Put("/{name}", h.PutList)
		})
		r.Get("/subcategories", h.GetSubcategories)
		r.Put("/subcategories", h.PutSubcategories)
		r.Get("/colors", h.GetCategoryColors)
		r.Put("/colors", h.PutCategoryColors)

		// Auto-categorize
		r.Route("/autocat", func(r chi.Router) {
			r.Get("/", h.GetAutoCatRules)
			r.Put("/", h.PutAutoCatRules)
			r.Post("/apply", h.ApplyAutoCat)
		})

		// Recurring
		r.Route("/recurring", func(r chi.Router) {
			r.Get("/", h.GetRecurringRules)
			r.Put("/", h.PutRecurringRules)
			r.Post("/materialize", h.MaterializeRecurring)
			r.Get("/preview", h.PreviewRecurring)
		})

		// Forecast
		r.Route("/forecast", func(r chi.Router) {
			r.Get("/items", h.GetForecastItems)
			r.Put("/items", h.PutForecastItems)
			r.Delete("/items/{id}", h.DeleteForecastItem)
			r.Post("/items/{id}/convert", h.ConvertForecastItem)
			r.Get("/projection", h.GetProjection)
			r.Get("/settings", h.GetForecastSettings)
			r.Put("/settings", h.PutForecastSettings)
		})

		// Backup / cloud sync
		r.Route("/backup", func(r chi.Router) {
			r.Get("/status", h.GetSyncStatus)
			r.Post("/now", h.BackupNow)
			r.Post("/restore", h.RestoreBackup)
			r.Get("/conflict", h.GetConflict)
			r.Post("/resolve", h.ResolveConflict)
		})

		// Danger zone
		r.Post("/wipe", h.Wipe)
	})

	return r
}
