package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tally-money/tally/internal/account"
	"github.com/tally-money/tally/internal/auth"
	"github.com/tally-money/tally/internal/http/middleware"
)

type Handler struct {
	svc    *account.Service
	tokens *auth.JWTManager
}

func NewHandler(svc *account.Service, tokens *auth.JWTManager) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

// ProfileRoutes mounts the authenticated account endpoints.
func (h *Handler) ProfileRoutes(r chi.Router) {
	r.Get("/", h.profile)
	r.Delete("/", h.remove)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string        `json:"token"`
	Owner ownerResponse `json:"owner"`
}

type ownerResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsernameTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, account.ErrInvalidUsername), errors.Is(err, account.ErrWeakPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	h.respondSession(w, owner, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.respondSession(w, owner, http.StatusOK)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	owner, err := h.svc.Get(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		if errors.Is(err, account.ErrOwnerNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := ownerResponse{
		ID:        owner.ID,
		Username:  owner.Username,
		CreatedAt: owner.CreatedAt,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// remove deletes the authenticated owner's account. Their people, debts, and
// transactions go with it.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.OwnerID(r.Context())); err != nil {
		if errors.Is(err, account.ErrOwnerNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondSession(w http.ResponseWriter, owner *account.Owner, status int) {
	token, err := h.tokens.Generate(owner)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := sessionResponse{
		Token: token,
		Owner: ownerResponse{
			ID:        owner.ID,
			Username:  owner.Username,
			CreatedAt: owner.CreatedAt,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
