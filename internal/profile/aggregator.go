// Package profile builds the caller's profile summary from the resource services.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"microhub/internal/apperr"
	"microhub/internal/auth"
	"microhub/internal/retry"

	"golang.org/x/sync/errgroup"
)

// Summary is the merged view returned by GET /profile/me.
type Summary struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	PostsCount      int    `json:"postsCount"`
	LikesGivenCount int    `json:"likesGivenCount"`
	CommentsCount   int    `json:"commentsCount"`
}

type Upstreams struct {
	UsersURL    string
	PostsURL    string
	LikesURL    string
	CommentsURL string
}

// Aggregator calls the four services on the caller's behalf.
type Aggregator struct {
	up   Upstreams
	http *http.Client
}

func NewAggregator(httpClient *http.Client, up Upstreams) *Aggregator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	trim := func(s string) string { return strings.TrimRight(s, "/") }
	return &Aggregator{
		up: Upstreams{
			UsersURL:    trim(up.UsersURL),
			PostsURL:    trim(up.PostsURL),
			LikesURL:    trim(up.LikesURL),
			CommentsURL: trim(up.CommentsURL),
		},
		http: httpClient,
	}
}

type countResponse struct {
	Count int `json:"count"`
}

// Summary fans out with the bearer token found in ctx. The first failing call
// cancels the rest and no partial summary is returned.
func (a *Aggregator) Summary(ctx context.Context) (Summary, error) {
	token, err := auth.Token(ctx)
	if err != nil {
		return Summary{}, apperr.Unauthorized("Missing or invalid Authorization header")
	}

	var me auth.Identity
	var posts, likes, comments countResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.get(gctx, token, a.up.UsersURL+"/users/me", &me) })
	g.Go(func() error { return a.get(gctx, token, a.up.PostsURL+"/posts/count/mine", &posts) })
	g.Go(func() error { return a.get(gctx, token, a.up.LikesURL+"/likes/user/count", &likes) })
	g.Go(func() error { return a.get(gctx, token, a.up.CommentsURL+"/comments/user/count", &comments) })
	if err := g.Wait(); err != nil {
		return Summary{}, apperr.Internal("Failed to load profile", err)
	}

	return Summary{
		ID:              me.ID,
		Username:        me.Username,
		Email:           me.Email,
		PostsCount:      posts.Count,
		LikesGivenCount: likes.Count,
		CommentsCount:   comments.Count,
	}, nil
}

func (a *Aggregator) get(ctx context.Context, token, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %w", url, &retry.StatusError{StatusCode: resp.StatusCode})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
