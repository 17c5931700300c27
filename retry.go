package batchrouter

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// RetryPolicy configures the optional retry transport installed by
// WithRetry. Zero fields take the defaults below.
type RetryPolicy struct {
	// NumRetries is the number of additional attempts after the first
	// (default 2).
	NumRetries int
	// Cooldown is the wait before the first retry; it doubles on every
	// subsequent retry (default 500ms).
	Cooldown time.Duration
	// MaxCooldown caps the doubling (default 8s).
	MaxCooldown time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.NumRetries == 0 {
		p.NumRetries = 2
	}
	if p.Cooldown == 0 {
		p.Cooldown = 500 * time.Millisecond
	}
	if p.MaxCooldown == 0 {
		p.MaxCooldown = 8 * time.Second
	}
	return p
}

// retryTransport retries idempotent requests on connection errors and 5xx
// responses. Requests with a body are never replayed.
type retryTransport struct {
	base   http.RoundTripper
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

func newRetryTransport(base http.RoundTripper, policy RetryPolicy) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{
		base:   base,
		policy: policy.withDefaults(),
		sleep:  sleepContext,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !retryable(req) {
		return t.base.RoundTrip(req)
	}

	cooldown := t.policy.Cooldown
	for attempt := 0; ; attempt++ {
		resp, err := t.base.RoundTrip(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if attempt >= t.policy.NumRetries {
			return resp, err
		}

		if err == nil {
			// Drain so the connection can be reused.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if serr := t.sleep(req.Context(), cooldown+jitter(cooldown)); serr != nil {
			return nil, serr
		}
		cooldown *= 2
		if cooldown > t.policy.MaxCooldown {
			cooldown = t.policy.MaxCooldown
		}
	}
}

// retryable reports whether the request is safe to replay: idempotent
// method and no body to re-read.
func retryable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return req.Body == nil || req.Body == http.NoBody
	}
	return false
}

// jitter returns a random duration up to half of d.
func jitter(d time.Duration) time.Duration {
	if d <= 1 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d / 2)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
