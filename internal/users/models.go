package users

import (
	"time"

	"microhub/internal/auth"
)

// User is a stored account. PasswordHash never leaves the service.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the claim set minted into tokens for u.
func (u User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  auth.Identity `json:"user"`
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6
