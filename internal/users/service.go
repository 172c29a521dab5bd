package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"microhub/internal/apperr"
	"microhub/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "Invalid email or password"

// Service owns registration, login and token verification.
type Service struct {
	repo       Repository
	tokens     *auth.Manager
	bcryptCost int
	now        func() time.Time
}

func NewService(repo Repository, tokens *auth.Manager, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost, now: time.Now}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return User{}, apperr.Validation("Missing required fields: username, email, password")
	}
	if len(req.Password) < MinPasswordLength {
		return User{}, apperr.Validation("Password must be at least 6 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return User{}, apperr.Internal("hashing password", err)
	}

	u := User{Username: username, Email: email, PasswordHash: string(hash)}
	switch err := s.repo.Create(ctx, &u); {
	case errors.Is(err, ErrEmailTaken):
		return User{}, apperr.Conflict("User with this email already exists")
	case errors.Is(err, ErrUsernameTaken):
		return User{}, apperr.Conflict("Username is already taken")
	case err != nil:
		return User{}, apperr.Internal("Registration failed", err)
	}
	return u, nil
}

// Login checks the password and mints a token. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return LoginResponse{}, apperr.Validation("Missing required fields: email, password")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return LoginResponse{}, apperr.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return LoginResponse{}, apperr.Internal("Login failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return LoginResponse{}, apperr.Unauthorized(msgBadCredentials)
	}

	tok, err := s.tokens.Issue(s.now(), u.Identity())
	if err != nil {
		return LoginResponse{}, apperr.Internal("token issuance failed", err)
	}
	return LoginResponse{Token: tok, User: u.Identity()}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, apperr.Internal("loading user", err)
	}
	return u, nil
}

// Verify decodes a token on behalf of other services.
func (s *Service) Verify(token string) (auth.Identity, error) {
	claims, err := s.tokens.Verify(token, s.now())
	if err != nil {
		return auth.Identity{}, apperr.Unauthorized("Invalid or expired token")
	}
	return claims.Identity(), nil
}

func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
