package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"microhub/internal/retry"
	"microhub/pkg/logger"
)

const defaultCallTimeout = 5 * time.Second

// ClientConfig configures the engine client used by the write paths.
type ClientConfig struct {
	BaseURL string
	// Timeout bounds each HTTP attempt, not the whole call. Only 429 answers are
	// retried, so a call that times out ends after one Timeout; a throttled call
	// can take up to 3*Timeout plus the 1s and 2s backoff. Defaults to 5s.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Retry defaults to retry.RateLimited().
	Retry *retry.Policy
}

// Client talks to the moderation engine's /moderation endpoints.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	policy  retry.Policy
}

func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	policy := retry.RateLimited()
	if cfg.Retry != nil {
		policy = *cfg.Retry
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    hc,
		policy:  policy,
	}
}

type clientCheckRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// Check submits one piece of content.
func (c *Client) Check(ctx context.Context, content, contentType string) (Verdict, error) {
	var v Verdict
	err := c.post(ctx, "/moderation/check", clientCheckRequest{Content: content, ContentType: contentType}, &v)
	return v, err
}

// CheckBatch submits up to MaxBatch items at once. Invalid batches are rejected
// without a call; an empty batch returns an empty result.
func (c *Client) CheckBatch(ctx context.Context, contents []string) ([]Verdict, error) {
	if err := ValidateBatch(contents); err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return []Verdict{}, nil
	}

	var vs []Verdict
	if err := c.post(ctx, "/moderation/batch", batchRequest{Contents: contents}, &vs); err != nil {
		return nil, err
	}
	if len(vs) != len(contents) {
		return nil, fmt.Errorf("moderation engine returned %d verdicts for %d items", len(vs), len(contents))
	}
	return vs, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	policy := c.policy
	policy.OnRetry = func(attempt int, delay time.Duration, _ error) {
		logger.From(ctx).Warn("moderation engine rate limited, retrying",
			"path", path, "attempt", attempt, "delay_ms", delay.Milliseconds())
	}

	return policy.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &retry.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		}
		return json.Unmarshal(raw, out)
	})
}
