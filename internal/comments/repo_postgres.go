package comments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"microhub/pkg/utils"
)

// PostgresRepo stores comments in the comments table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, c *Comment) error {
	const q = `
INSERT INTO comments (post_id, user_id, text)
VALUES ($1, $2, $3)
RETURNING id, created_at
`
	if err := r.db.QueryRowContext(ctx, q, c.PostID, c.UserID, c.Text).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	const q = `
SELECT id, post_id, user_id, text, created_at
FROM comments
WHERE post_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.db.QueryContext(ctx, q, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comment rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM comments WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return n, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, r.db, 2*time.Second)
}
