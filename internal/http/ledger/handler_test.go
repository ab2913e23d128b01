package ledger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerhttp "github.com/tally-money/tally/internal/http/ledger"
	"github.com/tally-money/tally/internal/http/middleware"
	"github.com/tally-money/tally/internal/ledger"
	"github.com/tally-money/tally/internal/ledger/memstore"
)

// newTestRouter mounts the handler the way the real router does, with the
// owner injected directly instead of going through token validation.
func newTestRouter(svc *ledger.Service, ownerID uuid.UUID) http.Handler {
	h := ledgerhttp.NewHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithOwnerID(req.Context(), ownerID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/people", h.PeopleRoutes)
	r.Route("/debts", h.DebtRoutes)

	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_DebtFlow(t *testing.T) {
	ownerID := uuid.New()
	svc := ledger.NewService(memstore.New(), nil)
	router := newTestRouter(svc, ownerID)

	rec := doJSON(t, router, http.MethodPost, "/people", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var person struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &person))

	rec = doJSON(t, router, http.MethodPost, "/debts", map[string]any{
		"person_id":   person.ID,
		"amount":      "100",
		"direction":   "lent",
		"description": "Concert tickets",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var debt struct {
		ID      uuid.UUID `json:"id"`
		Status  string    `json:"status"`
		Balance string    `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debt))
	assert.Equal(t, "active", debt.Status)
	assert.Equal(t, "100", debt.Balance)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/debts/%s/payments", debt.ID), map[string]any{
		"amount": "40",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var paid struct {
		Status  string `json:"status"`
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.Equal(t, "active", paid.Status)
	assert.Equal(t, "60", paid.Balance)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/debts/%s/settle", debt.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.Equal(t, "settled", paid.Status)

	rec = doJSON(t, router, http.MethodGet, "/debts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var overview struct {
		Debts         []json.RawMessage `json:"debts"`
		TotalLent     string            `json:"total_lent"`
		TotalBorrowed string            `json:"total_borrowed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Empty(t, overview.Debts)
	assert.Equal(t, "0", overview.TotalLent)
}

func TestHandler_ErrorMapping(t *testing.T) {
	ownerID := uuid.New()
	svc := ledger.NewService(memstore.New(), nil)
	router := newTestRouter(svc, ownerID)

	ctx := context.Background()
	alice, err := svc.AddPerson(ctx, ownerID, "Alice")
	require.NoError(t, err)

	debt, err := svc.RecordLoan(ctx, ownerID, ledger.RecordLoanParams{
		PersonID:  alice.ID,
		Amount:    decimal.RequireFromString("50"),
		Direction: ledger.DirectionLent,
	})
	require.NoError(t, err)

	type testCase struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}

	tests := []testCase{
		{
			name:     "NegativeLoanAmount",
			method:   http.MethodPost,
			path:     "/debts",
			body:     map[string]any{"person_id": alice.ID, "amount": "-10", "direction": "lent"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "BadDirection",
			method:   http.MethodPost,
			path:     "/debts",
			body:     map[string]any{"person_id": alice.ID, "amount": "10", "direction": "sideways"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "UnknownPerson",
			method:   http.MethodPost,
			path:     "/debts",
			body:     map[string]any{"person_id": uuid.New(), "amount": "10", "direction": "lent"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "UnknownDebt",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/debts/%s", uuid.New()),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "MalformedDebtID",
			method:   http.MethodGet,
			path:     "/debts/not-a-uuid",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "EmptyPersonName",
			method:   http.MethodPost,
			path:     "/people",
			body:     map[string]string{"name": "  "},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	t.Run("ForeignOwnerGets403", func(t *testing.T) {
		foreign := newTestRouter(svc, uuid.New())

		rec := doJSON(t, foreign, http.MethodPost, fmt.Sprintf("/debts/%s/payments", debt.ID), map[string]any{"amount": "5"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(t, foreign, http.MethodDelete, fmt.Sprintf("/people/%s", alice.ID), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
