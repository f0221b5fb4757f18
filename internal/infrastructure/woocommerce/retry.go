package woocommerce

import (
	"math/rand"
	"net/http"
	"time"
)

// RetryPolicy bounds how one logical request is retried. Shared by every
// call site so retry behavior cannot drift between them.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, first attempt included
	MaxAttempts int
	// BaseDelay is the wait before the second attempt
	BaseDelay time.Duration
	// MaxDelay caps any single wait
	MaxDelay time.Duration
	// Jitter is the upper bound of the random addition to each wait
	Jitter time.Duration
}

// DefaultRetryPolicy returns the standard policy: 3 attempts, 300ms base,
// 10s cap, up to 250ms of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   300 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      250 * time.Millisecond,
	}
}

// Backoff returns the wait after the given failed attempt (1-based):
// base * 2^(attempt-1) plus bounded random jitter. MaxDelay bounds the
// jittered total, so no single wait ever exceeds it.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// IsRetryableStatus reports whether an HTTP status indicates a transient
// condition worth retrying. Everything else non-2xx is a caller/data problem
// that retrying cannot help.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
