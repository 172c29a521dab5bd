// Package retry holds the backoff policy shared by every outbound call that
// may be throttled by its peer.
package retry

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Policy retries an operation while Retryable accepts its error.
// The delay before retry n (0-based attempt that just failed) is BaseDelay * 2^n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool

	// Sleep waits for d or until ctx is done. Tests replace it to record delays.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each wait; attempt is 1-based.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// RateLimited is the policy for upstreams that answer 429 under load:
// three attempts, 1s then 2s apart.
func RateLimited() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   IsTooManyRequests,
	}
}

// Delay returns the wait after the given 0-based failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts run out.
// The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) || attempt == attempts-1 {
			return err
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return err
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusError is returned by HTTP clients for unexpected response codes.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return http.StatusText(e.StatusCode) + ": " + e.Body
	}
	return "unexpected status " + http.StatusText(e.StatusCode)
}

// IsTooManyRequests reports whether err is an HTTP 429 from the peer.
func IsTooManyRequests(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}
