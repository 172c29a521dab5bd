package comments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"microhub/internal/apperr"
	"microhub/internal/auth"
	"microhub/internal/identity"
	"microhub/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	verdict moderation.Verdict
	types   []string
}

func (s *stubChecker) Check(_ context.Context, _ string, contentType string) (moderation.Verdict, error) {
	s.types = append(s.types, contentType)
	return s.verdict, nil
}

var bo = auth.Identity{ID: 2, Username: "bo"}

func TestCreate_UsesCommentContentType(t *testing.T) {
	chk := &stubChecker{verdict: moderation.Verdict{Approved: true}}
	s := NewService(NewMemoryRepo(), moderation.NewGate(chk, nil), identity.Static{2: "bo"})

	c, err := s.Create(context.Background(), bo, CreateRequest{PostID: 5, Text: "nice post"})
	require.NoError(t, err)
	assert.Equal(t, []string{moderation.ContentComment}, chk.types)
	assert.Equal(t, int64(5), c.PostID)
	assert.Equal(t, int64(2), c.UserID)
	assert.Equal(t, "bo", c.AuthorName)
}

func TestCreate_FlaggedCommentIsRejected(t *testing.T) {
	repo := NewMemoryRepo()
	chk := &stubChecker{verdict: moderation.Verdict{Flagged: true, FlaggedCategories: []string{"harassment"}}}
	s := NewService(repo, moderation.NewGate(chk, nil), nil)

	_, err := s.Create(context.Background(), bo, CreateRequest{PostID: 5, Text: "mean"})
	assert.True(t, apperr.Is(err, apperr.KindModerationRejected))
	assert.Equal(t, 0, repo.Len())
}

func TestCreate_EngineDownFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	repo := NewMemoryRepo()
	gate := moderation.NewGate(moderation.NewClient(moderation.ClientConfig{BaseURL: url}), nil)
	s := NewService(repo, gate, nil)

	_, err := s.Create(context.Background(), bo, CreateRequest{PostID: 5, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
}

func TestCreate_Validation(t *testing.T) {
	s := NewService(NewMemoryRepo(), moderation.NewGate(nil, nil), nil)
	for _, req := range []CreateRequest{{Text: "x"}, {PostID: 1}, {PostID: 1, Text: "   "}} {
		_, err := s.Create(context.Background(), bo, req)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%+v", req)
	}
}

func TestListAndDelete(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewService(repo, moderation.NewGate(nil, nil), identity.Static{2: "bo"})
	ctx := context.Background()

	first, err := s.Create(ctx, bo, CreateRequest{PostID: 1, Text: "first"})
	require.NoError(t, err)
	_, err = s.Create(ctx, auth.Identity{ID: 3}, CreateRequest{PostID: 1, Text: "second"})
	require.NoError(t, err)
	_, err = s.Create(ctx, bo, CreateRequest{PostID: 9, Text: "elsewhere"})
	require.NoError(t, err)

	cs, err := s.ListByPost(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "first", cs[0].Text)
	assert.Equal(t, "bo", cs[0].AuthorName)
	assert.Equal(t, "3", cs[1].AuthorName)

	err = s.Delete(ctx, auth.Identity{ID: 3}, first.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 3, repo.Len())

	require.NoError(t, s.Delete(ctx, bo, first.ID))
	n, err := s.CountMine(ctx, bo)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
