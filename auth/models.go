package auth

import "time"

// User represents a registered account as stored in the users table. The
// hashed password is never serialized and never leaves this package in any
// response DTO.
type User struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
