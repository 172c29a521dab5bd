package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"microhub/internal/retry"
	"microhub/pkg/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultResultModel = "text-moderation-latest"

// OpenAIConfig configures the OpenAI moderation provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	HTTPClient *http.Client
	// Retry defaults to retry.RateLimited().
	Retry *retry.Policy
}

// OpenAI calls the moderations endpoint through the official SDK. The SDK's own
// retries are off; policy is the only retry loop.
type OpenAI struct {
	client openai.Client
	model  string
	policy retry.Policy
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	policy := retry.RateLimited()
	if cfg.Retry != nil {
		policy = *cfg.Retry
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		policy: policy,
	}
}

// Moderate classifies inputs in one request. The whole request is retried on 429;
// results come back in input order.
func (o *OpenAI) Moderate(ctx context.Context, inputs []string) ([]Verdict, error) {
	params := openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfStringArray: inputs},
	}
	if o.model != "" {
		params.Model = openai.ModerationModel(o.model)
	}

	policy := o.policy
	policy.OnRetry = func(attempt int, delay time.Duration, _ error) {
		logger.From(ctx).Warn("moderation provider rate limited, retrying",
			"attempt", attempt, "max_attempts", policy.MaxAttempts, "delay_ms", delay.Milliseconds())
	}

	var resp *openai.ModerationNewResponse
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = o.client.Moderations.New(ctx, params)
		return statusError(err)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) != len(inputs) {
		return nil, fmt.Errorf("provider returned %d results for %d inputs", len(resp.Results), len(inputs))
	}

	model := resp.Model
	if model == "" {
		model = defaultResultModel
	}
	id := resp.ID
	if id == "" {
		id = "unknown"
	}

	verdicts := make([]Verdict, len(resp.Results))
	for i, r := range resp.Results {
		flags, scores, err := decodeCategories(r)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		res := &Result{
			ID:             id,
			Model:          model,
			Flagged:        r.Flagged,
			Categories:     make(map[string]bool, len(categories)),
			CategoryScores: make(map[string]float64, len(categories)),
			Approved:       !r.Flagged,
		}
		flagged := []string{}
		for _, c := range categories {
			on := flags[c.provider]
			res.Categories[c.name] = on
			res.CategoryScores[c.name] = scores[c.provider]
			if on {
				flagged = append(flagged, c.name)
			}
		}
		res.FlaggedCategories = flagged
		verdicts[i] = Verdict{
			Approved:          !r.Flagged,
			Flagged:           r.Flagged,
			FlaggedCategories: flagged,
			Details:           res,
		}
	}
	return verdicts, nil
}

// decodeCategories reads the categories and scores keyed by the provider's own
// names ("self-harm/intent"), which is what the category table maps from.
func decodeCategories(r openai.Moderation) (map[string]bool, map[string]float64, error) {
	flags := map[string]bool{}
	if raw := r.Categories.RawJSON(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &flags); err != nil {
			return nil, nil, fmt.Errorf("decode categories: %w", err)
		}
	}
	scores := map[string]float64{}
	if raw := r.CategoryScores.RawJSON(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &scores); err != nil {
			return nil, nil, fmt.Errorf("decode category scores: %w", err)
		}
	}
	return flags, scores, nil
}

// statusError turns an SDK API error into a retry.StatusError so the shared
// policy and the service see the provider's HTTP status.
func statusError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &retry.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
	}
	return err
}
