package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/civicfix-go/apperror"
	"github.com/user/civicfix-go/db"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// UserStore persists user records. Emails are stored and compared exactly
// as given; uniqueness is enforced by the users_email_key index, which is
// authoritative under concurrent registration.
type UserStore struct {
	db db.Querier
}

// NewUserStore creates a UserStore backed by the given querier.
func NewUserStore(q db.Querier) *UserStore {
	return &UserStore{db: q}
}

// FindByEmail returns the user with the given email, or a NotFoundError.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, first_name, last_name, email, password, created_at FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.HashedPassword, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return &user, nil
}

// FindByID returns the user with the given id, or a NotFoundError.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT id, first_name, last_name, email, password, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.HashedPassword, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}

// Create inserts a new user and returns its id. A unique violation on the
// email index maps to a ConflictError.
func (s *UserStore) Create(ctx context.Context, firstName, lastName, email, hashedPassword string) (int64, error) {
	var id int64
	query := `INSERT INTO users (first_name, last_name, email, password)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := s.db.QueryRow(ctx, query, firstName, lastName, email, hashedPassword).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, apperror.NewConflictError("user with the same email already exists", nil)
		}
		return 0, apperror.NewDatabaseError("failed to create user", err)
	}
	return id, nil
}
