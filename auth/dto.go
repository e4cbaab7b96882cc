// Package auth handles registration, login, token issuance and verification,
// and the request middleware that binds caller identity.
package auth

// RegisterRequest is the payload for POST /user/register.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required" example:"Alice"`
	LastName  string `json:"last_name" validate:"required" example:"Smith"`
	Email     string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password  string `json:"password" validate:"required" example:"strongpassword123"`
}

// LoginRequest is the payload for POST /user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Message string `json:"message" example:"User logged in successfully"`
	UserID  int64  `json:"user_id" example:"1"`
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ProfileResponse is the current user's profile, minus the password.
type ProfileResponse struct {
	ID        int64  `json:"id" example:"1"`
	FirstName string `json:"first_name" example:"Alice"`
	LastName  string `json:"last_name" example:"Smith"`
	Email     string `json:"email" example:"alice@example.com"`
}
