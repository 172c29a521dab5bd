package likes

import (
	"context"
	"errors"

	"microhub/internal/apperr"
	"microhub/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Like records the caller's like. A second like of the same post is a Conflict
// and leaves the count unchanged.
func (s *Service) Like(ctx context.Context, caller auth.Identity, postID int64) (Like, error) {
	if postID <= 0 {
		return Like{}, apperr.Validation("Missing required field: postId")
	}
	l := Like{PostID: postID, UserID: caller.ID}
	err := s.repo.Create(ctx, &l)
	if errors.Is(err, ErrAlreadyLiked) {
		return Like{}, apperr.Conflict("User has already liked this post")
	}
	if err != nil {
		return Like{}, apperr.Internal("Failed to like post", err)
	}
	return l, nil
}

func (s *Service) Unlike(ctx context.Context, caller auth.Identity, postID int64) error {
	if postID <= 0 {
		return apperr.Validation("Missing required field: postId")
	}
	err := s.repo.Delete(ctx, postID, caller.ID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Like not found")
	}
	if err != nil {
		return apperr.Internal("Failed to remove like", err)
	}
	return nil
}

func (s *Service) CountForPost(ctx context.Context, postID int64) (int, error) {
	n, err := s.repo.CountByPost(ctx, postID)
	if err != nil {
		return 0, apperr.Internal("Failed to count likes", err)
	}
	return n, nil
}

// StatusFor reports the post's like count and whether caller is among the likers.
func (s *Service) StatusFor(ctx context.Context, caller auth.Identity, postID int64) (Status, error) {
	n, err := s.CountForPost(ctx, postID)
	if err != nil {
		return Status{}, err
	}
	liked, err := s.repo.Exists(ctx, postID, caller.ID)
	if err != nil {
		return Status{}, apperr.Internal("Failed to load like status", err)
	}
	return Status{Count: n, Liked: liked}, nil
}

func (s *Service) CountMine(ctx context.Context, caller auth.Identity) (int, error) {
	n, err := s.repo.CountByUser(ctx, caller.ID)
	if err != nil {
		return 0, apperr.Internal("Failed to count likes", err)
	}
	return n, nil
}

func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
