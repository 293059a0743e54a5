package state

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/wreath/internal/memorial"
	"github.com/sethvargo/go-retry"
)

type keyed interface {
	Key() int64
}

// collection holds one variant's items plus the bookkeeping needed to order
// responses and detect new ids.
type collection[T keyed] struct {
	variant memorial.Variant
	items   []T
	seen    map[int64]struct{}

	loaded      bool
	stale       bool
	fetching    int
	nextSeq     uint64
	appliedSeq  uint64
	lastError   error
	lastUpdated time.Time
	failures    int
}

func newCollection[T keyed](v memorial.Variant) collection[T] {
	return collection[T]{variant: v, seen: make(map[int64]struct{})}
}

// CollectionState summarizes one collection for the UI.
type CollectionState struct {
	Loaded              bool
	Fetching            bool
	Stale               bool
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

func (c *collection[T]) state() CollectionState {
	return CollectionState{
		Loaded:              c.loaded,
		Fetching:            c.fetching > 0,
		Stale:               c.stale,
		LastError:           cloneError(c.lastError),
		LastUpdated:         c.lastUpdated,
		ConsecutiveFailures: c.failures,
	}
}

func (c *collection[T]) clone() []T {
	if len(c.items) == 0 {
		return nil
	}
	dup := make([]T, len(c.items))
	copy(dup, c.items)
	return dup
}

// dedupe keeps one entry per id. The last occurrence wins but keeps the
// position of the first.
func dedupe[T keyed](items []T) []T {
	index := make(map[int64]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.Key()]; ok {
			out[i] = item
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}

// merge adds item unless an entry with the same id is already present.
func (c *collection[T]) merge(item T) {
	for _, existing := range c.items {
		if existing.Key() == item.Key() {
			return
		}
	}
	c.items = append(c.items, item)
}

// refreshCollection fetches c with retries. Every attempt takes its own
// sequence number before the request goes out; the final response is applied
// only if no response with a higher number has been applied in the meantime.
func refreshCollection[T keyed](ctx context.Context, s *Store, c *collection[T], fetch func(context.Context) memorial.Envelope[[]T]) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	c.fetching++
	s.mu.Unlock()

	ctx, done := s.scope(ctx)
	defer done()

	var (
		last     memorial.Envelope[[]T]
		seq      uint64
		attempts int
	)
	err := retry.Do(ctx, newBackoff(s.attempts, s.retryBase), func(ctx context.Context) error {
		s.mu.Lock()
		c.nextSeq++
		seq = c.nextSeq
		s.mu.Unlock()

		attempts++
		last = fetch(ctx)
		if last.Success {
			return nil
		}
		return retry.RetryableError(last.Err())
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	c.fetching--

	if s.closed {
		return ErrClosed
	}
	if err != nil && attempts == 0 {
		// Cancelled before the first request went out.
		return fmt.Errorf("refresh %s: %w", c.variant.Plural(), err)
	}
	if seq < c.appliedSeq {
		return nil
	}

	now := s.clock.Now()
	c.appliedSeq = seq
	c.lastUpdated = now

	items, ok := last.Value()
	if err != nil || !ok {
		cause := err
		if cause == nil {
			cause = last.Err()
		}
		message := last.Message
		if message == "" {
			message = fmt.Sprintf("Could not load %s", c.variant.Plural())
		}
		c.lastError = &FetchError{
			Variant:  c.variant,
			Code:     last.Code,
			Message:  message,
			Attempts: attempts,
			Err:      cause,
		}
		c.failures++
		return c.lastError
	}

	items = dedupe(items)
	wasLoaded := c.loaded
	for _, item := range items {
		id := item.Key()
		if _, ok := c.seen[id]; ok {
			continue
		}
		c.seen[id] = struct{}{}
		if wasLoaded {
			s.highlightLocked(c.variant, id, now.Add(s.newItemTTL))
		}
	}
	c.items = items
	c.loaded = true
	c.stale = false
	c.lastError = nil
	c.failures = 0
	return nil
}
