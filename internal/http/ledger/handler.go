// Package ledger exposes people and debts over HTTP.
package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-money/tally/internal/http/middleware"
	"github.com/tally-money/tally/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PeopleRoutes(r chi.Router) {
	r.Get("/", h.listPeople)
	r.Post("/", h.addPerson)
	r.Delete("/{id}", h.removePerson)
}

func (h *Handler) DebtRoutes(r chi.Router) {
	r.Get("/", h.listActiveDebts)
	r.Post("/", h.recordLoan)
	r.Get("/{id}", h.getDebt)
	r.Post("/{id}/payments", h.recordPayment)
	r.Post("/{id}/settle", h.settleDebt)
}

type addPersonRequest struct {
	Name string `json:"name"`
}

type recordLoanRequest struct {
	PersonID    uuid.UUID       `json:"person_id"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   string          `json:"direction"`
	Description string          `json:"description"`
}

type recordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) listPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.ListPeople(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]personResponse, 0, len(people))
	for _, p := range people {
		resp = append(resp, toPersonResponse(p))
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) addPerson(w http.ResponseWriter, r *http.Request) {
	var req addPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	person, err := h.svc.AddPerson(r.Context(), middleware.OwnerID(r.Context()), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toPersonResponse(person))
}

func (h *Handler) removePerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid person id", http.StatusBadRequest)
		return
	}

	if err := h.svc.RemovePerson(r.Context(), middleware.OwnerID(r.Context()), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listActiveDebts(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.ListActiveDebts(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOverviewResponse(overview))
}

func (h *Handler) getDebt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid debt id", http.StatusBadRequest)
		return
	}

	debt, err := h.svc.GetDebt(r.Context(), middleware.OwnerID(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (h *Handler) recordLoan(w http.ResponseWriter, r *http.Request) {
	var req recordLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	debt, err := h.svc.RecordLoan(r.Context(), middleware.OwnerID(r.Context()), ledger.RecordLoanParams{
		PersonID:    req.PersonID,
		Amount:      req.Amount,
		Direction:   ledger.Direction(req.Direction),
		Description: req.Description,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toDebtResponse(debt))
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid debt id", http.StatusBadRequest)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	debt, err := h.svc.RecordPayment(r.Context(), middleware.OwnerID(r.Context()), id, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (h *Handler) settleDebt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid debt id", http.StatusBadRequest)
		return
	}

	debt, err := h.svc.SettleDebt(r.Context(), middleware.OwnerID(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDebtResponse(debt))
}

func respondError(w http.ResponseWriter, err error) {
	var vErr *ledger.ValidationError

	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrPersonNotFound), errors.Is(err, ledger.ErrDebtNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrNotOwned):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ledger.ErrDebtConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
