package treasury

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opengov-ph/treasury-backend/internal/utils"
)

// ActorDirectory resolves an authenticated user id into a full Actor.
type ActorDirectory interface {
	ActorByID(ctx context.Context, id string) (Actor, error)
}

// Handler exposes the workflow over HTTP.
type Handler struct {
	workflow *Workflow
	engine   *BalanceEngine
	store    RecordStore
	actors   ActorDirectory
}

func NewHandler(workflow *Workflow, engine *BalanceEngine, store RecordStore, actors ActorDirectory) *Handler {
	return &Handler{workflow: workflow, engine: engine, store: store, actors: actors}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return Actor{}, false
	}
	actor, err := h.actors.ActorByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Unauthorized: user not found", http.StatusUnauthorized)
		return Actor{}, false
	}
	return actor, true
}

// SubmitRecord handles POST /{allocations|expenditures|proposals}.
func (h *Handler) SubmitRecord(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		var draft Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, "Invalid Request Format", http.StatusBadRequest)
			return
		}

		result, err := h.workflow.Submit(r.Context(), kind, draft, actor)
		if err != nil {
			writeWorkflowError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

// RecordIncome handles POST /income.
func (h *Handler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	result, err := h.workflow.RecordIncome(r.Context(), draft, actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Approve handles POST /{kind}/{id}/approve.
func (h *Handler) Approve(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		result, err := h.workflow.Approve(r.Context(), kind, chi.URLParam(r, "id"), actor)
		if err != nil {
			writeWorkflowError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// Reject handles POST /{kind}/{id}/reject.
func (h *Handler) Reject(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid Request Format", http.StatusBadRequest)
			return
		}

		result, err := h.workflow.Reject(r.Context(), kind, chi.URLParam(r, "id"), actor, body.Reason)
		if err != nil {
			writeWorkflowError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// Summary handles GET /summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.GeneralFundSummary(r.Context())
	if err != nil {
		http.Error(w, "Failed to compute summary: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Budgets handles GET /budgets.
func (h *Handler) Budgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.engine.CategoryBudgets(r.Context())
	if err != nil {
		http.Error(w, "Failed to compute budgets: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

// ListRecords handles GET /records with kind/status/category filters.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Kind:     Kind(r.URL.Query().Get("kind")),
		Status:   Status(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
	}

	records, err := h.store.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to fetch records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Unanchored handles GET /unanchored: approved or recorded documents whose
// ledger write failed, awaiting reconciliation.
func (h *Handler) Unanchored(w http.ResponseWriter, r *http.Request) {
	anchored := false
	records, err := h.store.List(r.Context(), ListFilter{Status: StatusApproved, Anchored: &anchored})
	if err != nil {
		http.Error(w, "Failed to fetch records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeWorkflowError(w http.ResponseWriter, err error) {
	var validation ValidationError
	var admission AdmissionError
	var state StateError
	var permission PermissionError

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &admission):
		http.Error(w, admission.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &state):
		http.Error(w, state.Error(), http.StatusConflict)
	case errors.As(err, &permission):
		http.Error(w, permission.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicateExpenditure):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Operation failed: "+err.Error(), http.StatusInternalServerError)
	}
}
