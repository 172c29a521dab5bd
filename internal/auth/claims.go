package auth

import "github.com/golang-jwt/jwt/v5"

// Identity is the verified subject attached to a request. It is never persisted.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Claims is the only supported JWT claims shape. The identity fields sit at the
// top level of the payload, next to iat/exp.
type Claims struct {
	jwt.RegisteredClaims

	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (c Claims) Identity() Identity {
	return Identity{ID: c.UserID, Username: c.Username, Email: c.Email}
}
