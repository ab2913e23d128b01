package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-money/tally/internal/account"
	"github.com/tally-money/tally/internal/auth"
	"github.com/tally-money/tally/internal/http/middleware"
)

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	owner := &account.Owner{ID: uuid.New(), Username: "alice"}

	token, err := tokens.Generate(owner)
	require.NoError(t, err)

	var gotOwnerID uuid.UUID

	handler := middleware.RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwnerID = middleware.OwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	type testCase struct {
		name     string
		header   string
		wantCode int
	}

	tests := []testCase{
		{
			name:     "ValidToken",
			header:   "Bearer " + token,
			wantCode: http.StatusOK,
		},
		{
			name:     "MissingHeader",
			header:   "",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "NotBearer",
			header:   "Basic dXNlcjpwYXNz",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "GarbageToken",
			header:   "Bearer not.a.token",
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOwnerID = uuid.Nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, owner.ID, gotOwnerID)
			} else {
				assert.Equal(t, uuid.Nil, gotOwnerID)
			}
		})
	}
}
