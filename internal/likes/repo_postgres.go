package likes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"microhub/pkg/utils"
)

// constraintPostUser enforces one like per user and post.
const constraintPostUser = "post_user_unique"

// PostgresRepo stores likes in the likes table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, l *Like) error {
	const q = `
INSERT INTO likes (post_id, user_id)
VALUES ($1, $2)
RETURNING id, created_at
`
	err := r.db.QueryRowContext(ctx, q, l.PostID, l.UserID).Scan(&l.ID, &l.CreatedAt)
	if utils.IsUniqueViolation(err, constraintPostUser) {
		return ErrAlreadyLiked
	}
	if err != nil {
		return fmt.Errorf("inserting like: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, postID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("deleting like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting like: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var ok bool
	const q = `SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, q, postID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking like: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepo) CountByPost(ctx context.Context, postID int64) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM likes WHERE post_id = $1`, postID)
}

func (r *PostgresRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM likes WHERE user_id = $1`, userID)
}

func (r *PostgresRepo) count(ctx context.Context, q string, arg int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting likes: %w", err)
	}
	return n, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, r.db, 2*time.Second)
}
