package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"microhub/pkg/utils"
)

// PostgresRepo stores posts in the posts table. Topics are a JSONB array.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, p *Post) error {
	if p.Topics == nil {
		p.Topics = []string{}
	}
	topics, err := json.Marshal(p.Topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}

	const q = `
INSERT INTO posts (title, text, author_id, topics)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`
	if err := r.db.QueryRowContext(ctx, q, p.Title, p.Text, p.Author, string(topics)).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Post, error) {
	const q = `
SELECT id, title, text, author_id, topics, created_at
FROM posts
ORDER BY created_at DESC, id DESC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		var (
			p      Post
			topics []byte
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Text, &p.Author, &topics, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		p.Topics = []string{}
		if len(topics) > 0 {
			if err := json.Unmarshal(topics, &p.Topics); err != nil {
				return nil, fmt.Errorf("decoding topics of post %d: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id, author int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, author)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) CountByAuthor(ctx context.Context, author int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM posts WHERE author_id = $1`, author).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, r.db, 2*time.Second)
}
