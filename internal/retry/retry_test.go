package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ delays []time.Duration }

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestDo_RetriesTooManyRequestsWithDoublingDelay(t *testing.T) {
	rec := &recorder{}
	p := RateLimited()
	p.Sleep = rec.sleep

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return &StatusError{StatusCode: http.StatusTooManyRequests}
	})

	require.Error(t, err)
	assert.True(t, IsTooManyRequests(err))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestDo_SucceedsOnThirdAttempt(t *testing.T) {
	rec := &recorder{}
	p := RateLimited()
	p.Sleep = rec.sleep

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: http.StatusTooManyRequests}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.delays, 2)
}

func TestDo_NonRetryableSurfacesImmediately(t *testing.T) {
	rec := &recorder{}
	p := RateLimited()
	p.Sleep = rec.sleep

	boom := &StatusError{StatusCode: http.StatusBadGateway}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RateLimited()
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return &StatusError{StatusCode: http.StatusTooManyRequests}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryReportsAttempts(t *testing.T) {
	p := RateLimited()
	p.Sleep = (&recorder{}).sleep

	var seen []int
	p.OnRetry = func(attempt int, _ time.Duration, _ error) { seen = append(seen, attempt) }

	_ = p.Do(context.Background(), func(context.Context) error {
		return &StatusError{StatusCode: http.StatusTooManyRequests}
	})
	assert.Equal(t, []int{1, 2}, seen)
}

func TestIsTooManyRequests(t *testing.T) {
	assert.False(t, IsTooManyRequests(errors.New("x")))
	assert.False(t, IsTooManyRequests(nil))
}
