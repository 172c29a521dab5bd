package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"microhub/internal/apperr"
	"microhub/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPolicy is the production policy with a sleeper that records instead of waiting.
func recordingPolicy(delays *[]time.Duration) *retry.Policy {
	p := retry.RateLimited()
	p.Sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return &p
}

func TestClient_RetriesOn429WithBackoff(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(Verdict{Approved: true, FlaggedCategories: []string{}})
	}))
	defer srv.Close()

	var delays []time.Duration
	c := NewClient(ClientConfig{BaseURL: srv.URL, Retry: recordingPolicy(&delays)})

	v, err := c.Check(context.Background(), "hello", ContentPost)
	require.NoError(t, err)
	assert.True(t, v.Approved)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestClient_GivesUpAfterThirdRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var delays []time.Duration
	c := NewClient(ClientConfig{BaseURL: srv.URL, Retry: recordingPolicy(&delays)})

	_, err := c.Check(context.Background(), "hello", ContentPost)
	require.Error(t, err)
	assert.True(t, retry.IsTooManyRequests(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, delays, 2)
}

func TestClient_OtherErrorsSurfaceImmediately(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var delays []time.Duration
	_, err := NewClient(ClientConfig{BaseURL: srv.URL, Retry: recordingPolicy(&delays)}).Check(context.Background(), "x", ContentText)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, delays)
}

func TestClient_BatchValidationSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	c := NewClient(ClientConfig{BaseURL: srv.URL})

	out, err := c.CheckBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	big := make([]string, MaxBatch+1)
	for i := range big {
		big[i] = "ok"
	}
	_, err = c.CheckBatch(context.Background(), big)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = c.CheckBatch(context.Background(), []string{"a", "b", "", "d"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, 2, e.Index)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_BatchKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/moderation/batch", r.URL.Path)
		var in batchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		out := make([]Verdict, len(in.Contents))
		for i, c := range in.Contents {
			bad := strings.Contains(c, "bad")
			out[i] = Verdict{Approved: !bad, Flagged: bad, FlaggedCategories: []string{}}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	vs, err := NewClient(ClientConfig{BaseURL: srv.URL}).CheckBatch(context.Background(), []string{"good", "bad", "fine"})
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.True(t, vs[0].Approved)
	assert.False(t, vs[1].Approved)
	assert.True(t, vs[2].Approved)
}

func TestClient_TimeoutEndsCallAfterOneAttempt(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	var delays []time.Duration
	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Retry: recordingPolicy(&delays)})

	start := time.Now()
	_, err := c.Check(context.Background(), "hello", ContentPost)
	require.Error(t, err)
	assert.True(t, isUnreachable(err))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, delays)
}
