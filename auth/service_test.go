package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/civicfix-go/apperror"
)

func newTestService(t *testing.T) (*AuthService, pgxmock.PgxPoolIface, *TokenService) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	tokens := NewTokenService("test-secret", time.Hour)
	service := NewAuthService(NewUserStore(mock), NewPasswordHasher(bcrypt.MinCost), tokens)
	return service, mock, tokens
}

func hashedPassword(t *testing.T, plaintext string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// bcryptHashOf matches any argument that is a valid bcrypt hash of the given
// plaintext, so the test never needs to predict the salt.
type bcryptHashOf struct {
	plaintext string
}

func (a bcryptHashOf) Match(v interface{}) bool {
	s, ok := v.(string)
	return ok && bcrypt.CompareHashAndPassword([]byte(s), []byte(a.plaintext)) == nil
}

func TestAuthService_Register(t *testing.T) {
	req := RegisterRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Password:  "secret",
	}

	t.Run("success issues a verifiable token", func(t *testing.T) {
		service, mock, tokens := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Alice", "Smith", "alice@example.com", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

		resp, err := service.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.UserID)

		subjectID, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), subjectID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing email is a conflict", func(t *testing.T) {
		service, mock, _ := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(userRow(1, "alice@example.com"))

		_, err := service.Register(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("stores a hash, never the plaintext", func(t *testing.T) {
		service, mock, _ := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Alice", "Smith", "alice@example.com", bcryptHashOf{plaintext: "secret"}).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

		_, err := service.Register(context.Background(), req)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success after register", func(t *testing.T) {
		service, mock, tokens := newTestService(t)
		hash := hashedPassword(t, "secret")
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "email", "password", "created_at"}).
				AddRow(int64(1), "Alice", "Smith", "alice@example.com", hash, time.Now()))

		resp, err := service.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.UserID)

		subjectID, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), subjectID)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		service, mock, _ := newTestService(t)
		hash := hashedPassword(t, "secret")
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "email", "password", "created_at"}).
				AddRow(int64(1), "Alice", "Smith", "alice@example.com", hash, time.Now()))
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, wrongPassErr := service.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong"})
		_, unknownUserErr := service.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "secret"})

		require.Error(t, wrongPassErr)
		require.Error(t, unknownUserErr)
		assert.True(t, apperror.IsAuthError(wrongPassErr))
		assert.True(t, apperror.IsAuthError(unknownUserErr))

		wrongPassApp, _ := apperror.FromError(wrongPassErr)
		unknownUserApp, _ := apperror.FromError(unknownUserErr)
		assert.Equal(t, wrongPassApp.ToResponse(), unknownUserApp.ToResponse())
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	t.Run("profile excludes the password", func(t *testing.T) {
		service, mock, _ := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(userRow(1, "alice@example.com"))

		profile, err := service.CurrentUser(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, &ProfileResponse{
			ID:        1,
			FirstName: "Alice",
			LastName:  "Smith",
			Email:     "alice@example.com",
		}, profile)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		service, mock, _ := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		_, err := service.CurrentUser(context.Background(), 99)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}
