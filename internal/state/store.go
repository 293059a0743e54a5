package state

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/five82/wreath/internal/memorial"
)

const (
	DefaultNewItemTTL = 5 * time.Second
	DefaultCreatedTTL = 10 * time.Second
	DefaultNoticeTTL  = 8 * time.Second

	sweepInterval = 500 * time.Millisecond
)

// HighlightKey identifies a highlighted tribute.
type HighlightKey struct {
	Variant memorial.Variant
	ID      int64
}

// Snapshot is an immutable view of the store for rendering.
type Snapshot struct {
	Flowers       []memorial.Flower
	Leaves        []memorial.Leaf
	FlowerState   CollectionState
	LeafState     CollectionState
	Highlights    map[HighlightKey]time.Time
	Notifications []Notification
	Now           time.Time

	IsLoadingInitial bool
	IsFetchingAny    bool
	IsCreatingFlower bool
	IsCreatingLeaf   bool
	LastError        error
}

// IsHighlighted reports whether the tribute was active in the highlight set
// when the snapshot was taken.
func (s Snapshot) IsHighlighted(v memorial.Variant, id int64) bool {
	_, ok := s.Highlights[HighlightKey{Variant: v, ID: id}]
	return ok
}

// IsOffline returns true when either collection failed its last two refreshes.
func (s Snapshot) IsOffline() bool {
	return s.FlowerState.ConsecutiveFailures >= 2 || s.LeafState.ConsecutiveFailures >= 2
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRetry sets the number of attempts per refresh and the first retry delay.
func WithRetry(attempts int, base time.Duration) Option {
	return func(s *Store) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if base > 0 {
			s.retryBase = base
		}
	}
}

// WithHighlightTTL overrides how long new and just-created items stay
// highlighted.
func WithHighlightTTL(newItem, created time.Duration) Option {
	return func(s *Store) {
		if newItem > 0 {
			s.newItemTTL = newItem
		}
		if created > 0 {
			s.createdTTL = created
		}
	}
}

// WithNoticeTTL overrides how long notifications remain visible.
func WithNoticeTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.noticeTTL = d
		}
	}
}

// Store owns the flower and leaf collections and the transient state derived
// from them. All methods are safe for concurrent use.
type Store struct {
	gw         memorial.Gateway
	clock      clock.Clock
	attempts   int
	retryBase  time.Duration
	newItemTTL time.Duration
	createdTTL time.Duration
	noticeTTL  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	closed         bool
	flowers        collection[memorial.Flower]
	leaves         collection[memorial.Leaf]
	highlights     map[HighlightKey]time.Time
	notices        []Notification
	nextNotice     int
	creatingFlower int
	creatingLeaf   int
}

// New builds a Store that reads and writes through gw.
func New(gw memorial.Gateway, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		gw:         gw,
		clock:      clock.New(),
		attempts:   DefaultAttempts,
		retryBase:  DefaultRetryBase,
		newItemTTL: DefaultNewItemTTL,
		createdTTL: DefaultCreatedTTL,
		noticeTTL:  DefaultNoticeTTL,
		ctx:        ctx,
		cancel:     cancel,
		flowers:    newCollection[memorial.Flower](memorial.VariantFlower),
		leaves:     newCollection[memorial.Leaf](memorial.VariantLeaf),
		highlights: make(map[HighlightKey]time.Time),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// scope derives a request context that is cancelled when either ctx or the
// store is done.
func (s *Store) scope(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Refresh fetches one collection, retrying transient failures. A failure that
// survives every attempt is recorded as the collection's LastError and
// returned; the previous items are kept.
func (s *Store) Refresh(ctx context.Context, v memorial.Variant) error {
	switch v {
	case memorial.VariantFlower:
		return refreshCollection(ctx, s, &s.flowers, s.gw.ListFlowers)
	case memorial.VariantLeaf:
		return refreshCollection(ctx, s, &s.leaves, s.gw.ListLeaves)
	default:
		return fmt.Errorf("refresh: unknown variant %q", v)
	}
}

// Invalidate marks a collection stale and re-fetches it immediately.
func (s *Store) Invalidate(ctx context.Context, v memorial.Variant) error {
	s.mu.Lock()
	switch v {
	case memorial.VariantFlower:
		s.flowers.stale = true
	case memorial.VariantLeaf:
		s.leaves.stale = true
	}
	s.mu.Unlock()
	return s.Refresh(ctx, v)
}

// CreateFlower validates content, sends it, and refreshes the flowers. The
// returned error is non-nil only for invalid input or a closed store; remote
// failures are reported through the envelope and a notification.
func (s *Store) CreateFlower(ctx context.Context, content string) (memorial.Envelope[memorial.Flower], error) {
	normalized, ok := memorial.NormalizeContent(content)
	if !ok {
		return memorial.Failure[memorial.Flower](http.StatusBadRequest, "Message is empty", ErrEmptyContent), ErrEmptyContent
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return memorial.Failure[memorial.Flower](memorial.CodeUnreachable, "Store closed", ErrClosed), ErrClosed
	}
	s.creatingFlower++
	s.mu.Unlock()

	reqCtx, done := s.scope(ctx)
	env := s.gw.CreateFlower(reqCtx, normalized)
	done()

	s.mu.Lock()
	s.creatingFlower--
	if s.closed {
		s.mu.Unlock()
		return env, ErrClosed
	}
	flower, ok := env.Value()
	if !ok {
		s.notifyLocked(NoticeFailure, memorial.VariantFlower, "Could not send your message", orDefault(env.Message, "Please try again."))
		s.mu.Unlock()
		return env, nil
	}
	s.markCreatedLocked(memorial.VariantFlower, flower.ID, s.flowers.seen)
	s.notifyLocked(NoticeSuccess, memorial.VariantFlower, "Your message was delivered", orDefault(env.Message, "Your flower was added to the wreath."))
	s.mu.Unlock()

	if err := s.Invalidate(ctx, memorial.VariantFlower); err != nil && !errors.Is(err, ErrClosed) {
		s.mu.Lock()
		s.flowers.merge(flower)
		s.mu.Unlock()
	}
	return env, nil
}

// CreateLeaf asks the server for a new leaf and refreshes the leaves. The
// phrase shown is always the one the server returned.
func (s *Store) CreateLeaf(ctx context.Context) (memorial.Envelope[memorial.Leaf], error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return memorial.Failure[memorial.Leaf](memorial.CodeUnreachable, "Store closed", ErrClosed), ErrClosed
	}
	s.creatingLeaf++
	s.mu.Unlock()

	reqCtx, done := s.scope(ctx)
	env := s.gw.CreateLeaf(reqCtx)
	done()

	s.mu.Lock()
	s.creatingLeaf--
	if s.closed {
		s.mu.Unlock()
		return env, ErrClosed
	}
	leaf, ok := env.Value()
	if !ok {
		s.notifyLocked(NoticeFailure, memorial.VariantLeaf, "Could not send your leaf", orDefault(env.Message, "Please try again."))
		s.mu.Unlock()
		return env, nil
	}
	s.markCreatedLocked(memorial.VariantLeaf, leaf.ID, s.leaves.seen)
	s.notifyLocked(NoticeSuccess, memorial.VariantLeaf, "Your warm thoughts were delivered", orDefault(env.Message, leaf.Content))
	s.mu.Unlock()

	if err := s.Invalidate(ctx, memorial.VariantLeaf); err != nil && !errors.Is(err, ErrClosed) {
		s.mu.Lock()
		s.leaves.merge(leaf)
		s.mu.Unlock()
	}
	return env, nil
}

func (s *Store) markCreatedLocked(v memorial.Variant, id int64, seen map[int64]struct{}) {
	seen[id] = struct{}{}
	s.highlightLocked(v, id, s.clock.Now().Add(s.createdTTL))
}

// highlightLocked sets a deadline for key unless a later one already exists.
func (s *Store) highlightLocked(v memorial.Variant, id int64, deadline time.Time) {
	key := HighlightKey{Variant: v, ID: id}
	if current, ok := s.highlights[key]; ok && current.After(deadline) {
		return
	}
	s.highlights[key] = deadline
}

// Highlighted returns the keys whose deadline has not passed.
func (s *Store) Highlighted() []HighlightKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.pruneLocked(now)
	keys := make([]HighlightKey, 0, len(s.highlights))
	for k := range s.highlights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Variant != keys[j].Variant {
			return keys[i].Variant < keys[j].Variant
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.pruneLocked(now)

	snap := Snapshot{
		Flowers:          s.flowers.clone(),
		Leaves:           s.leaves.clone(),
		FlowerState:      s.flowers.state(),
		LeafState:        s.leaves.state(),
		Highlights:       make(map[HighlightKey]time.Time, len(s.highlights)),
		Now:              now,
		IsCreatingFlower: s.creatingFlower > 0,
		IsCreatingLeaf:   s.creatingLeaf > 0,
	}
	for k, v := range s.highlights {
		snap.Highlights[k] = v
	}
	if len(s.notices) > 0 {
		snap.Notifications = append([]Notification(nil), s.notices...)
	}
	snap.IsLoadingInitial = (!snap.FlowerState.Loaded && snap.FlowerState.Fetching) ||
		(!snap.LeafState.Loaded && snap.LeafState.Fetching)
	snap.IsFetchingAny = snap.FlowerState.Fetching || snap.LeafState.Fetching
	snap.LastError = snap.FlowerState.LastError
	if snap.LastError == nil {
		snap.LastError = snap.LeafState.LastError
	}
	return snap
}

// pruneLocked drops expired highlights and notifications.
func (s *Store) pruneLocked(now time.Time) {
	for k, deadline := range s.highlights {
		if !deadline.After(now) {
			delete(s.highlights, k)
		}
	}
	kept := s.notices[:0]
	for _, n := range s.notices {
		if n.CreatedAt.Add(s.noticeTTL).After(now) {
			kept = append(kept, n)
		}
	}
	s.notices = kept
}

// StartSweeper prunes expired highlights and notifications in the background
// until ctx is done or the store is closed. It returns immediately.
func (s *Store) StartSweeper(ctx context.Context) {
	ticker := s.clock.Ticker(sweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				s.pruneLocked(s.clock.Now())
				s.mu.Unlock()
			}
		}
	}()
}

// Close cancels in-flight requests. Responses that arrive afterwards are
// discarded and later operations return ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
