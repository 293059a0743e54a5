package state

import (
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultAttempts is the number of fetch attempts per refresh.
	DefaultAttempts = 3
	// DefaultRetryBase is the delay before the first retry.
	DefaultRetryBase = time.Second

	maxBackoff = 30 * time.Second
)

// calculateBackoff returns base·2^failures, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures < 0 {
		failures = 0
	}
	if base <= 0 {
		base = DefaultRetryBase
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

// newBackoff builds the retry schedule for one refresh: attempts-1 retries
// spaced by calculateBackoff.
func newBackoff(attempts int, base time.Duration) retry.Backoff {
	if attempts < 1 {
		attempts = 1
	}
	var mu sync.Mutex
	n := 0
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		mu.Lock()
		defer mu.Unlock()
		d := calculateBackoff(n, base)
		n++
		return d, false
	})
	return retry.WithMaxRetries(uint64(attempts-1), next)
}
