package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/civicfix-go/apperror"
)

// Claims is the JWT payload for issued bearer tokens.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited bearer tokens. The
// signing secret is injected at construction and fixed for the process
// lifetime; tokens are self-contained, so there is no session table and no
// revocation. A correctly signed, unexpired token is always accepted.
type TokenService struct {
	secret   []byte
	duration time.Duration
}

// NewTokenService creates a TokenService signing with secret. Tokens expire
// duration after issuance.
func NewTokenService(secret string, duration time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), duration: duration}
}

// Issue creates a signed HS256 token for the given subject.
func (s *TokenService) Issue(subjectID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", subjectID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses tokenString and returns the subject id. Bad signature,
// malformed structure and expiry all collapse into a single ForbiddenError;
// callers see only valid or invalid.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, apperror.NewForbiddenError("invalid token", err)
	}
	if !token.Valid {
		return 0, apperror.NewForbiddenError("invalid token", nil)
	}
	if claims.UserID == 0 {
		return 0, apperror.NewForbiddenError("invalid token", nil)
	}
	return claims.UserID, nil
}
