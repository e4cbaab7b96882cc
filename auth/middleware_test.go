package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	validToken, err := tokens.Issue(42)
	require.NoError(t, err)

	expiredToken, err := NewTokenService("test-secret", -time.Minute).Issue(42)
	require.NoError(t, err)

	foreignToken, err := NewTokenService("other-secret", time.Hour).Issue(42)
	require.NoError(t, err)

	tests := []struct {
		name         string
		authHeader   string
		wantStatus   int
		wantCallerID int64
	}{
		{
			name:       "missing header is unauthenticated",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token is forbidden",
			authHeader: "Bearer garbage",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "expired token is forbidden",
			authHeader: "Bearer " + expiredToken,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "token signed with another key is forbidden",
			authHeader: "Bearer " + foreignToken,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "non-bearer scheme is forbidden",
			authHeader: "Basic " + validToken,
			wantStatus: http.StatusForbidden,
		},
		{
			name:         "valid token binds caller identity",
			authHeader:   "Bearer " + validToken,
			wantStatus:   http.StatusOK,
			wantCallerID: 42,
		},
		{
			name:         "bearer scheme is case-insensitive",
			authHeader:   "bearer " + validToken,
			wantStatus:   http.StatusOK,
			wantCallerID: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCallerID int64
			var handlerCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				id, ok := CallerID(r.Context())
				require.True(t, ok)
				gotCallerID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			Middleware(tokens)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, handlerCalled)
				assert.Equal(t, tt.wantCallerID, gotCallerID)
			} else {
				assert.False(t, handlerCalled, "handler must not run without identity")
				assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			}
		})
	}
}

func TestCallerID_AbsentByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := CallerID(req.Context())
	assert.False(t, ok)
}
