package moderation

import (
	"context"
	"errors"
	"strings"

	"microhub/internal/apperr"
	"microhub/internal/retry"
	"microhub/pkg/logger"
)

// Provider classifies a list of texts, one verdict per input in order.
type Provider interface {
	Moderate(ctx context.Context, inputs []string) ([]Verdict, error)
}

// Service is the moderation engine: validation in front of a Provider.
type Service struct {
	provider Provider
}

func NewService(p Provider) *Service {
	return &Service{provider: p}
}

func (s *Service) Check(ctx context.Context, content, contentType string) (Verdict, error) {
	if strings.TrimSpace(content) == "" {
		return Verdict{}, apperr.Validation("Content cannot be empty")
	}
	logger.From(ctx).Debug("moderating content", "content_type", normalizeContentType(contentType), "length", len(content))

	vs, err := s.provider.Moderate(ctx, []string{content})
	if err != nil {
		return Verdict{}, providerError("Moderation failed", err)
	}
	return vs[0], nil
}

// CheckBatch moderates up to MaxBatch items in a single provider call.
func (s *Service) CheckBatch(ctx context.Context, contents []string) ([]Verdict, error) {
	if err := ValidateBatch(contents); err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return []Verdict{}, nil
	}

	vs, err := s.provider.Moderate(ctx, contents)
	if err != nil {
		return nil, providerError("Batch moderation failed", err)
	}
	return vs, nil
}

func providerError(msg string, err error) error {
	if retry.IsTooManyRequests(err) {
		return apperr.RateLimited("Moderation provider is rate limiting requests")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream(msg, err)
	}
	return apperr.Internal(msg, err)
}
