package auth

import (
	"context"
	"log"

	"github.com/user/civicfix-go/apperror"
)

// AuthService orchestrates registration, login and profile lookup over the
// user store, password hasher and token service.
type AuthService struct {
	store  *UserStore
	hasher *PasswordHasher
	tokens *TokenService
}

// NewAuthService creates an AuthService with its collaborators injected.
func NewAuthService(store *UserStore, hasher *PasswordHasher, tokens *TokenService) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens}
}

// Register creates a new user and returns its id with a fresh bearer token.
// The pre-check gives a friendly conflict message; the unique index in the
// store remains the authority under concurrent duplicate registration.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	_, err := s.store.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperror.NewConflictError("user with the same email already exists", nil)
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to process password", err)
	}

	id, err := s.store.Create(ctx, req.FirstName, req.LastName, req.Email, hashed)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	return &AuthResponse{
		Message: "User registered successfully",
		UserID:  id,
		Token:   token,
	}, nil
}

// Login verifies credentials and returns the user id with a fresh bearer
// token. The response never distinguishes an unknown email from a wrong
// password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid email or password", nil)
		}
		log.Printf("database error during login: %v", err)
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.HashedPassword) {
		return nil, apperror.NewAuthError("invalid email or password", nil)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	return &AuthResponse{
		Message: "User logged in successfully",
		UserID:  user.ID,
		Token:   token,
	}, nil
}

// CurrentUser returns the profile for an authenticated caller. The record
// can be gone if the id came from a token issued before the database was
// reset; that surfaces as NotFound.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}
