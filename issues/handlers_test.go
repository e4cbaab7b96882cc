package issues

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/civicfix-go/auth"
)

// newTestRouter wires the issue routes the way main does, backed by a mock
// database and a real token service.
func newTestRouter(t *testing.T) (*chi.Mux, pgxmock.PgxPoolIface, *auth.TokenService) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	handler := NewHandler(NewService(mock))

	r := chi.NewRouter()
	r.Route("/issues", func(r chi.Router) {
		handler.RegisterRoutes(r, auth.Middleware(tokens))
	})
	return r, mock, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenService, userID int64) string {
	t.Helper()
	token, err := tokens.Issue(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestIssueRoutes_PublicReads(t *testing.T) {
	t.Run("list requires no token", func(t *testing.T) {
		r, mock, _ := newTestRouter(t)
		mock.ExpectQuery(`SELECT .+ FROM issues ORDER BY id`).
			WillReturnRows(issueColumnsRows().
				AddRow(int64(1), int64(10), "Pothole", "big one", "2024-05-01", "", "Main St", int32(0), int32(0)))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var list []Issue
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "Pothole", list[0].Title)
	})

	t.Run("get by id requires no token", func(t *testing.T) {
		r, mock, _ := newTestRouter(t)
		mock.ExpectQuery(`SELECT .+ FROM issues WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(issueColumnsRows().
				AddRow(int64(1), int64(10), "Pothole", "big one", "2024-05-01", "", "Main St", int32(0), int32(0)))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues/1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		r, mock, _ := newTestRouter(t)
		mock.ExpectQuery(`SELECT .+ FROM issues WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues/99", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues/pothole", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIssueRoutes_WritesRequireAuth(t *testing.T) {
	body := `{"title":"Pothole","description":"big one","date":"2024-05-01","image":"","location":"Main St"}`

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/issues"},
		{http.MethodPut, "/issues/1"},
		{http.MethodDelete, "/issues/1"},
		{http.MethodPost, "/issues/1/upvote"},
		{http.MethodPost, "/issues/1/downvote"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path+" without token", func(t *testing.T) {
			r, _, _ := newTestRouter(t)
			req := httptest.NewRequest(p.method, p.path, strings.NewReader(body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})

		t.Run(p.method+" "+p.path+" with bad token", func(t *testing.T) {
			r, _, _ := newTestRouter(t)
			req := httptest.NewRequest(p.method, p.path, strings.NewReader(body))
			req.Header.Set("Authorization", "Bearer garbage")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestIssueRoutes_CreateAndVoteFlow(t *testing.T) {
	r, mock, tokens := newTestRouter(t)

	// alice (10) reports an issue.
	mock.ExpectQuery(`INSERT INTO issues`).
		WithArgs(int64(10), "Pothole", "big one", "2024-05-01", "", "Main St").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	createReq := httptest.NewRequest(http.MethodPost, "/issues",
		strings.NewReader(`{"title":"Pothole","description":"big one","date":"2024-05-01","image":"","location":"Main St"}`))
	createReq.Header.Set("Authorization", bearerFor(t, tokens, 10))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, createReq)

	require.Equal(t, http.StatusOK, rec.Code)
	var created IssueIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.IssueID)

	// bob (11) upvotes it, despite not owning it.
	mock.ExpectQuery(`UPDATE issues SET upvotes = upvotes \+ 1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	voteReq := httptest.NewRequest(http.MethodPost, "/issues/1/upvote", nil)
	voteReq.Header.Set("Authorization", bearerFor(t, tokens, 11))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, voteReq)

	require.Equal(t, http.StatusOK, rec.Code)

	// bob tries to rewrite alice's issue and is refused.
	mock.ExpectQuery(`SELECT user_id FROM issues WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(int64(10)))

	updateReq := httptest.NewRequest(http.MethodPut, "/issues/1",
		strings.NewReader(`{"title":"Not a pothole","description":"","date":"","image":"","location":""}`))
	updateReq.Header.Set("Authorization", bearerFor(t, tokens, 11))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, updateReq)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRoutes_CreateValidation(t *testing.T) {
	r, _, tokens := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/issues", strings.NewReader(`{"description":"no title"}`))
	req.Header.Set("Authorization", bearerFor(t, tokens, 10))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
