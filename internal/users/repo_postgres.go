package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"microhub/pkg/utils"
)

const (
	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"
)

// PostgresRepo stores accounts in the users table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Create checks both unique columns and inserts in one transaction. The unique
// constraints still decide a concurrent race.
func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var taken bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, u.Email).Scan(&taken); err != nil {
			return fmt.Errorf("checking email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, u.Username).Scan(&taken); err != nil {
			return fmt.Errorf("checking username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}

		const q = `
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at
`
		err := tx.QueryRowContext(ctx, q, u.Username, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		switch {
		case utils.IsUniqueViolation(err, constraintEmail):
			return ErrEmailTaken
		case utils.IsUniqueViolation(err, constraintUsername):
			return ErrUsernameTaken
		case err != nil:
			return fmt.Errorf("inserting user: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *PostgresRepo) getOne(ctx context.Context, where string, arg any) (User, error) {
	q := `
SELECT id, username, email, password_hash, created_at, updated_at
FROM users
` + where

	var u User
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, r.db, 2*time.Second)
}
