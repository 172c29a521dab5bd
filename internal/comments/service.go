package comments

import (
	"context"
	"errors"

	"microhub/internal/apperr"
	"microhub/internal/auth"
	"microhub/internal/identity"
	"microhub/internal/moderation"
	"microhub/internal/sanitize"
)

// Moderator decides whether content may be published.
type Moderator interface {
	Moderate(ctx context.Context, content, contentType string) error
}

type Service struct {
	repo      Repository
	moderator Moderator
	names     identity.Resolver
	sanitizer *sanitize.Sanitizer
}

func NewService(repo Repository, moderator Moderator, names identity.Resolver) *Service {
	if names == nil {
		names = identity.Static{}
	}
	return &Service{repo: repo, moderator: moderator, names: names, sanitizer: sanitize.New()}
}

func (s *Service) Create(ctx context.Context, author auth.Identity, req CreateRequest) (Comment, error) {
	text := s.sanitizer.Text(req.Text)
	if req.PostID <= 0 || text == "" {
		return Comment{}, apperr.Validation("Missing required fields: postId, text")
	}

	if err := s.moderator.Moderate(ctx, text, moderation.ContentComment); err != nil {
		return Comment{}, err
	}

	c := Comment{PostID: req.PostID, UserID: author.ID, Text: text}
	if err := s.repo.Create(ctx, &c); err != nil {
		return Comment{}, apperr.Internal("Failed to create comment", err)
	}
	c.AuthorName = s.names.DisplayName(ctx, c.UserID)
	return c, nil
}

// ListByPost returns a post's comments oldest first with author display names.
func (s *Service) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	cs, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperr.Internal("Failed to list comments", err)
	}
	ids := make([]int64, len(cs))
	for i, c := range cs {
		ids[i] = c.UserID
	}
	for i, name := range s.names.DisplayNames(ctx, ids) {
		cs[i].AuthorName = name
	}
	return cs, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	err := s.repo.Delete(ctx, id, caller.ID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Comment not found or unauthorized")
	}
	if err != nil {
		return apperr.Internal("Failed to delete comment", err)
	}
	return nil
}

func (s *Service) CountMine(ctx context.Context, caller auth.Identity) (int, error) {
	n, err := s.repo.CountByUser(ctx, caller.ID)
	if err != nil {
		return 0, apperr.Internal("Failed to count comments", err)
	}
	return n, nil
}

func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
