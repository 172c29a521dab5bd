package posts

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

// Service implements the posts write and read paths.
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

// Create moderates title and text in one submission, stores the post and
// attaches the author's display name.
func (s *Service) Create(ctx context.Context, author auth.Identity, req CreateRequest) (Post, error) {
	title := s.sanitizer.Text(req.Title)
	text := s.sanitizer.Text(req.Text)
	if title == "" || text == "" {
		return Post{}, apperr.Validation("Missing required fields: title, text")
	}

	if err := s.moderator.Moderate(ctx, title+"\n"+text, moderation.ContentPost); err != nil {
		return Post{}, err
	}

	p := Post{
		Title:  title,
		Text:   text,
		Author: author.ID,
		Topics: s.sanitizer.All(req.Topics),
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return Post{}, apperr.Internal("Failed to create post", err)
	}
	p.AuthorName = s.names.DisplayName(ctx, p.Author)
	return p, nil
}

// List returns all posts newest first, each with its author's display name.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	ps, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to list posts", err)
	}
	ids := make([]int64, len(ps))
	for i, p := range ps {
		ids[i] = p.Author
	}
	for i, name := range s.names.DisplayNames(ctx, ids) {
		ps[i].AuthorName = name
	}
	return ps, nil
}

// Delete removes a post owned by caller. Missing and foreign posts both report NotFound.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	err := s.repo.Delete(ctx, id, caller.ID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Post not found or unauthorized")
	}
	if err != nil {
		return apperr.Internal("Failed to delete post", err)
	}
	return nil
}

func (s *Service) CountMine(ctx context.Context, caller auth.Identity) (int, error) {
	n, err := s.repo.CountByAuthor(ctx, caller.ID)
	if err != nil {
		return 0, apperr.Internal("Failed to count posts", err)
	}
	return n, nil
}

func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
