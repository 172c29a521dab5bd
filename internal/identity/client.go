// Package identity resolves user ids to display names through the users service.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"microhub/internal/auth"
	"microhub/internal/retry"
	"microhub/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds the fan-out when enriching a list.
const maxConcurrentLookups = 16

// Resolver turns author ids into display names. It never fails: an unknown or
// unreachable user resolves to the decimal id.
type Resolver interface {
	DisplayName(ctx context.Context, id int64) string
	DisplayNames(ctx context.Context, ids []int64) []string
}

// Client reads public user records from {baseURL}/users/{id}.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// User fetches the public record for id.
func (c *Client) User(ctx context.Context, id int64) (auth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return auth.Identity{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return auth.Identity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Identity{}, &retry.StatusError{StatusCode: resp.StatusCode}
	}
	var u auth.Identity
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return auth.Identity{}, fmt.Errorf("decode user %d: %w", id, err)
	}
	return u, nil
}

func (c *Client) DisplayName(ctx context.Context, id int64) string {
	fallback := strconv.FormatInt(id, 10)
	if c == nil || c.baseURL == "" {
		return fallback
	}
	u, err := c.User(ctx, id)
	if err != nil {
		logger.From(ctx).Warn("username lookup failed", "user_id", id, "err", err)
		return fallback
	}
	if u.Username == "" {
		return fallback
	}
	return u.Username
}

// DisplayNames resolves every id concurrently; out[i] belongs to ids[i].
func (c *Client) DisplayNames(ctx context.Context, ids []int64) []string {
	out := make([]string, len(ids))
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			out[i] = c.DisplayName(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Static resolves from a fixed map. Missing ids fall back to the decimal id.
type Static map[int64]string

func (s Static) DisplayName(_ context.Context, id int64) string {
	if name, ok := s[id]; ok && name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}

func (s Static) DisplayNames(ctx context.Context, ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.DisplayName(ctx, id)
	}
	return out
}
