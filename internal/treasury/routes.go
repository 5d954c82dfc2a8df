package treasury

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opengov-ph/treasury-backend/internal/middleware"
)

// SetupRoutes wires the treasury surface. Every route requires a session;
// submissions are treasurer-only and transitions are chairman-only, with
// the workflow re-checking the live role on top of the route gate.
func SetupRoutes(h *Handler, sessions middleware.SessionFetcher, roles middleware.RoleFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(sessions))

	// Read-only views, any authenticated official.
	r.Get("/summary", h.Summary)
	r.Get("/budgets", h.Budgets)
	r.Get("/records", h.ListRecords)

	treasurer := middleware.RequireRole(roles, RoleTreasurer)
	chairman := middleware.RequireRole(roles, RoleChairman)

	r.With(treasurer).Post("/income", h.RecordIncome)

	mount := func(path string, kind Kind) {
		r.Route(path, func(r chi.Router) {
			r.With(treasurer).Post("/", h.SubmitRecord(kind))
			r.With(chairman).Post("/{id}/approve", h.Approve(kind))
			r.With(chairman).Post("/{id}/reject", h.Reject(kind))
		})
	}
	mount("/allocations", KindAllocation)
	mount("/expenditures", KindExpenditure)
	mount("/proposals", KindProposal)

	r.With(chairman).Get("/unanchored", h.Unanchored)

	return r
}
