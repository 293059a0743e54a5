package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/require"

	"github.com/five82/wreath/internal/memorial"
)

type stubGateway struct {
	mu           sync.Mutex
	listFlowers  func(ctx context.Context, call int) memorial.Envelope[[]memorial.Flower]
	listLeaves   func(ctx context.Context, call int) memorial.Envelope[[]memorial.Leaf]
	createFlower func(ctx context.Context, content string) memorial.Envelope[memorial.Flower]
	createLeaf   func(ctx context.Context) memorial.Envelope[memorial.Leaf]

	flowerCalls int
	leafCalls   int
	creates     []string
}

func (g *stubGateway) ListFlowers(ctx context.Context) memorial.Envelope[[]memorial.Flower] {
	g.mu.Lock()
	g.flowerCalls++
	call := g.flowerCalls
	fn := g.listFlowers
	g.mu.Unlock()
	if fn == nil {
		return memorial.Success[[]memorial.Flower](200, "ok", nil)
	}
	return fn(ctx, call)
}

func (g *stubGateway) ListLeaves(ctx context.Context) memorial.Envelope[[]memorial.Leaf] {
	g.mu.Lock()
	g.leafCalls++
	call := g.leafCalls
	fn := g.listLeaves
	g.mu.Unlock()
	if fn == nil {
		return memorial.Success[[]memorial.Leaf](200, "ok", nil)
	}
	return fn(ctx, call)
}

func (g *stubGateway) CreateFlower(ctx context.Context, content string) memorial.Envelope[memorial.Flower] {
	g.mu.Lock()
	g.creates = append(g.creates, content)
	fn := g.createFlower
	g.mu.Unlock()
	return fn(ctx, content)
}

func (g *stubGateway) CreateLeaf(ctx context.Context) memorial.Envelope[memorial.Leaf] {
	g.mu.Lock()
	g.creates = append(g.creates, "")
	fn := g.createLeaf
	g.mu.Unlock()
	return fn(ctx)
}

func (g *stubGateway) calls() (flowers, leaves int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flowerCalls, g.leafCalls
}

func flowers(ids ...int64) memorial.Envelope[[]memorial.Flower] {
	items := make([]memorial.Flower, 0, len(ids))
	for _, id := range ids {
		items = append(items, memorial.NewFlower(id, "tribute", "2025-05-01T10:00:00Z"))
	}
	return memorial.Success(200, "ok", items)
}

func unreachable[T any]() memorial.Envelope[T] {
	return memorial.Failure[T](memorial.CodeUnreachable, "Could not load: server unreachable", errors.New("connection refused"))
}

func newTestStore(gw memorial.Gateway, opts ...Option) *Store {
	base := []Option{WithRetry(DefaultAttempts, time.Millisecond)}
	s := New(gw, append(base, opts...)...)
	return s
}

func flowerIDs(snap Snapshot) []int64 {
	ids := make([]int64, 0, len(snap.Flowers))
	for _, f := range snap.Flowers {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestRefresh_DedupesWithLastOccurrenceWinning(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(context.Context, int) memorial.Envelope[[]memorial.Flower] {
			return memorial.Success(200, "ok", []memorial.Flower{
				memorial.NewFlower(1, "first", ""),
				memorial.NewFlower(2, "second", ""),
				memorial.NewFlower(1, "replacement", ""),
			})
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)

	require.NoError(t, s.Refresh(context.Background(), memorial.VariantFlower))

	snap := s.Snapshot()
	require.Equal(t, []int64{1, 2}, flowerIDs(snap))
	require.Equal(t, "replacement", snap.Flowers[0].Content)
	require.True(t, snap.FlowerState.Loaded)
	require.NoError(t, snap.LastError)
}

func TestRefresh_InitialLoadDoesNotHighlight(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(context.Context, int) memorial.Envelope[[]memorial.Flower] { return flowers(1, 2, 3) },
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)

	require.NoError(t, s.Refresh(context.Background(), memorial.VariantFlower))
	require.Empty(t, s.Highlighted())
}

func TestRefresh_DiffHighlightsOnlyNewIDs(t *testing.T) {
	mock := clock.NewMock()
	gw := &stubGateway{
		listFlowers: func(_ context.Context, call int) memorial.Envelope[[]memorial.Flower] {
			if call == 1 {
				return flowers(1, 2, 3)
			}
			return flowers(1, 3, 4)
		},
	}
	s := newTestStore(gw, WithClock(mock))
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))
	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))

	want := []HighlightKey{{Variant: memorial.VariantFlower, ID: 4}}
	require.Equal(t, want, s.Highlighted())
	deadline := s.Snapshot().Highlights[want[0]]

	// Same id set again: nothing new, deadline untouched.
	mock.Add(time.Second)
	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))
	require.Equal(t, want, s.Highlighted())
	require.Equal(t, deadline, s.Snapshot().Highlights[want[0]])
}

func TestRefresh_ReappearingIDIsNotNew(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(_ context.Context, call int) memorial.Envelope[[]memorial.Flower] {
			switch call {
			case 1:
				return flowers(1, 2)
			case 2:
				return flowers(1)
			default:
				return flowers(1, 2)
			}
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))
	}
	require.Empty(t, s.Highlighted())
}

func TestRefresh_ExhaustsRetriesAndKeepsItems(t *testing.T) {
	fail := false
	var mu sync.Mutex
	gw := &stubGateway{
		listLeaves: func(context.Context, int) memorial.Envelope[[]memorial.Leaf] {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return unreachable[[]memorial.Leaf]()
			}
			return memorial.Success(200, "ok", []memorial.Leaf{memorial.NewLeaf(7, "Thank you", "")})
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, memorial.VariantLeaf))

	mu.Lock()
	fail = true
	mu.Unlock()

	err := s.Refresh(ctx, memorial.VariantLeaf)
	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, DefaultAttempts, fe.Attempts)
	require.Equal(t, memorial.CodeUnreachable, fe.Code)

	_, leafCalls := gw.calls()
	require.Equal(t, 1+DefaultAttempts, leafCalls)

	snap := s.Snapshot()
	require.Len(t, snap.Leaves, 1)
	require.Equal(t, int64(7), snap.Leaves[0].ID)
	require.EqualError(t, snap.LastError, "Could not load: server unreachable")
	require.Equal(t, 1, snap.LeafState.ConsecutiveFailures)
	require.False(t, snap.IsOffline())

	// The next scheduled refresh tries again from scratch.
	require.Error(t, s.Refresh(ctx, memorial.VariantLeaf))
	_, leafCalls = gw.calls()
	require.Equal(t, 1+2*DefaultAttempts, leafCalls)
	require.True(t, s.Snapshot().IsOffline())

	mu.Lock()
	fail = false
	mu.Unlock()
	require.NoError(t, s.Refresh(ctx, memorial.VariantLeaf))
	snap = s.Snapshot()
	require.NoError(t, snap.LastError)
	require.Zero(t, snap.LeafState.ConsecutiveFailures)
}

func TestRefresh_RetrySucceedsBeforeExhaustion(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(_ context.Context, call int) memorial.Envelope[[]memorial.Flower] {
			if call == 1 {
				return unreachable[[]memorial.Flower]()
			}
			return flowers(5)
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)

	require.NoError(t, s.Refresh(context.Background(), memorial.VariantFlower))
	flowerCalls, _ := gw.calls()
	require.Equal(t, 2, flowerCalls)
	require.Equal(t, []int64{5}, flowerIDs(s.Snapshot()))
}

func TestRefresh_DiscardsOlderResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &stubGateway{
		listFlowers: func(_ context.Context, call int) memorial.Envelope[[]memorial.Flower] {
			if call == 1 {
				close(started)
				<-release
				return flowers(1)
			}
			return flowers(1, 2)
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Refresh(ctx, memorial.VariantFlower) }()
	<-started

	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))
	close(release)
	require.NoError(t, <-errCh)

	require.Equal(t, []int64{1, 2}, flowerIDs(s.Snapshot()))
}

func TestRefresh_RetrySentAfterNewerRefreshIsApplied(t *testing.T) {
	var s *Store
	gw := &stubGateway{}
	gw.listFlowers = func(ctx context.Context, call int) memorial.Envelope[[]memorial.Flower] {
		switch call {
		case 1:
			// An invalidation lands while the poll waits to retry.
			require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))
			return unreachable[[]memorial.Flower]()
		case 2:
			return flowers(1, 2)
		default:
			return flowers(1, 2, 3)
		}
	}
	s = newTestStore(gw)
	t.Cleanup(s.Close)

	require.NoError(t, s.Refresh(context.Background(), memorial.VariantFlower))

	flowerCalls, _ := gw.calls()
	require.Equal(t, 3, flowerCalls)
	snap := s.Snapshot()
	require.Equal(t, []int64{1, 2, 3}, flowerIDs(snap))
	require.True(t, snap.IsHighlighted(memorial.VariantFlower, 3))
	require.NoError(t, snap.LastError)
}

func TestRefresh_RetryWaitsDoNotFollowInjectedClock(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(_ context.Context, call int) memorial.Envelope[[]memorial.Flower] {
			if call < DefaultAttempts {
				return unreachable[[]memorial.Flower]()
			}
			return flowers(4)
		},
	}
	// The mock clock is never advanced; the retries still complete.
	s := newTestStore(gw, WithClock(clock.NewMock()))
	t.Cleanup(s.Close)

	require.NoError(t, s.Refresh(context.Background(), memorial.VariantFlower))
	flowerCalls, _ := gw.calls()
	require.Equal(t, DefaultAttempts, flowerCalls)
	require.Equal(t, []int64{4}, flowerIDs(s.Snapshot()))
}

func TestClose_DiscardsLateResponses(t *testing.T) {
	started := make(chan struct{})
	gw := &stubGateway{
		listFlowers: func(ctx context.Context, _ int) memorial.Envelope[[]memorial.Flower] {
			close(started)
			<-ctx.Done()
			return flowers(1, 2, 3)
		},
	}
	s := newTestStore(gw)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Refresh(context.Background(), memorial.VariantFlower) }()
	<-started
	s.Close()

	require.ErrorIs(t, <-errCh, ErrClosed)
	require.Empty(t, s.Snapshot().Flowers)
	require.ErrorIs(t, s.Refresh(context.Background(), memorial.VariantLeaf), ErrClosed)

	_, err := s.CreateLeaf(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestCreateFlower_RoundTrip(t *testing.T) {
	mock := clock.NewMock()
	created := false
	var mu sync.Mutex
	gw := &stubGateway{
		listFlowers: func(context.Context, int) memorial.Envelope[[]memorial.Flower] {
			mu.Lock()
			defer mu.Unlock()
			if created {
				return flowers(1, 9)
			}
			return flowers(1)
		},
		createFlower: func(_ context.Context, content string) memorial.Envelope[memorial.Flower] {
			mu.Lock()
			created = true
			mu.Unlock()
			return memorial.Success(201, "Thank you for your message", memorial.NewFlower(9, content, ""))
		},
	}
	s := newTestStore(gw, WithClock(mock))
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))

	env, err := s.CreateFlower(ctx, "  we remember you  ")
	require.NoError(t, err)
	require.True(t, env.Success)
	require.Equal(t, []string{"we remember you"}, gw.creates)

	snap := s.Snapshot()
	require.Equal(t, []int64{1, 9}, flowerIDs(snap))
	require.True(t, snap.IsHighlighted(memorial.VariantFlower, 9))
	require.Equal(t, mock.Now().Add(DefaultCreatedTTL), snap.Highlights[HighlightKey{memorial.VariantFlower, 9}])
	require.Len(t, snap.Notifications, 1)
	require.Equal(t, NoticeSuccess, snap.Notifications[0].Kind)
	require.Equal(t, "Thank you for your message", snap.Notifications[0].Message)

	mock.Add(DefaultCreatedTTL - time.Millisecond)
	require.True(t, s.Snapshot().IsHighlighted(memorial.VariantFlower, 9))
	mock.Add(2 * time.Millisecond)
	require.False(t, s.Snapshot().IsHighlighted(memorial.VariantFlower, 9))
}

func TestCreateFlower_RejectsEmptyContent(t *testing.T) {
	gw := &stubGateway{}
	s := newTestStore(gw)
	t.Cleanup(s.Close)

	env, err := s.CreateFlower(context.Background(), " \n ")
	require.ErrorIs(t, err, ErrEmptyContent)
	require.False(t, env.Success)
	require.Empty(t, gw.creates)
	require.Empty(t, s.Notifications())
}

func TestCreateFlower_TruncatesLongContent(t *testing.T) {
	gw := &stubGateway{
		createFlower: func(_ context.Context, content string) memorial.Envelope[memorial.Flower] {
			return memorial.Success(201, "", memorial.NewFlower(3, content, ""))
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)

	long := make([]rune, memorial.MaxContentLength+10)
	for i := range long {
		long[i] = 'a'
	}
	_, err := s.CreateFlower(context.Background(), string(long))
	require.NoError(t, err)
	require.Len(t, gw.creates, 1)
	require.Len(t, []rune(gw.creates[0]), memorial.MaxContentLength)
}

func TestCreateFlower_FailureNotifiesAndLeavesCollections(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(context.Context, int) memorial.Envelope[[]memorial.Flower] { return flowers(1) },
		createFlower: func(context.Context, string) memorial.Envelope[memorial.Flower] {
			return memorial.Failure[memorial.Flower](409, "Duplicate message", nil)
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))

	env, err := s.CreateFlower(ctx, "hello")
	require.NoError(t, err)
	require.False(t, env.Success)

	flowerCalls, _ := gw.calls()
	require.Equal(t, 1, flowerCalls)

	snap := s.Snapshot()
	require.Equal(t, []int64{1}, flowerIDs(snap))
	require.Empty(t, snap.Highlights)
	require.Len(t, snap.Notifications, 1)
	require.Equal(t, NoticeFailure, snap.Notifications[0].Kind)
	require.Equal(t, "Duplicate message", snap.Notifications[0].Message)
}

func TestCreateFlower_MergesConfirmedItemWhenRefreshFails(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(_ context.Context, call int) memorial.Envelope[[]memorial.Flower] {
			if call == 1 {
				return flowers(1)
			}
			return unreachable[[]memorial.Flower]()
		},
		createFlower: func(_ context.Context, content string) memorial.Envelope[memorial.Flower] {
			return memorial.Success(201, "", memorial.NewFlower(9, content, ""))
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx, memorial.VariantFlower))

	_, err := s.CreateFlower(ctx, "hello")
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Equal(t, []int64{1, 9}, flowerIDs(snap))
	require.Equal(t, "hello", snap.Flowers[1].Content)
	require.Error(t, snap.LastError)
}

func TestCreateLeaf_ShowsServerPhrase(t *testing.T) {
	created := false
	var mu sync.Mutex
	gw := &stubGateway{
		listLeaves: func(context.Context, int) memorial.Envelope[[]memorial.Leaf] {
			mu.Lock()
			defer mu.Unlock()
			if created {
				return memorial.Success(200, "ok", []memorial.Leaf{memorial.NewLeaf(4, "Rest in peace", "")})
			}
			return memorial.Success[[]memorial.Leaf](200, "ok", nil)
		},
		createLeaf: func(context.Context) memorial.Envelope[memorial.Leaf] {
			mu.Lock()
			created = true
			mu.Unlock()
			return memorial.Success(201, "", memorial.NewLeaf(4, "Rest in peace", ""))
		},
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)

	env, err := s.CreateLeaf(context.Background())
	require.NoError(t, err)
	require.True(t, env.Success)

	snap := s.Snapshot()
	require.Len(t, snap.Leaves, 1)
	require.Equal(t, "Rest in peace", snap.Leaves[0].Content)
	require.True(t, snap.IsHighlighted(memorial.VariantLeaf, 4))
	require.Len(t, snap.Notifications, 1)
	require.Equal(t, "Rest in peace", snap.Notifications[0].Message)
}

func TestHighlight_NeverShortensDeadline(t *testing.T) {
	mock := clock.NewMock()
	s := newTestStore(&stubGateway{}, WithClock(mock))
	t.Cleanup(s.Close)

	now := mock.Now()
	s.mu.Lock()
	s.highlightLocked(memorial.VariantFlower, 1, now.Add(10*time.Second))
	s.highlightLocked(memorial.VariantFlower, 1, now.Add(5*time.Second))
	s.mu.Unlock()

	mock.Add(6 * time.Second)
	require.Equal(t, []HighlightKey{{memorial.VariantFlower, 1}}, s.Highlighted())
}

func TestNewItemHighlightExpires(t *testing.T) {
	mock := clock.NewMock()
	gw := &stubGateway{
		listLeaves: func(_ context.Context, call int) memorial.Envelope[[]memorial.Leaf] {
			items := []memorial.Leaf{memorial.NewLeaf(1, "Thank you", "")}
			if call > 1 {
				items = append(items, memorial.NewLeaf(2, "We miss you", ""))
			}
			return memorial.Success(200, "ok", items)
		},
	}
	s := newTestStore(gw, WithClock(mock))
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, memorial.VariantLeaf))
	require.NoError(t, s.Refresh(ctx, memorial.VariantLeaf))
	require.True(t, s.Snapshot().IsHighlighted(memorial.VariantLeaf, 2))

	mock.Add(DefaultNewItemTTL + time.Millisecond)
	require.False(t, s.Snapshot().IsHighlighted(memorial.VariantLeaf, 2))
	require.Empty(t, s.Highlighted())
}

func TestNotifications_ExpireAndDismiss(t *testing.T) {
	mock := clock.NewMock()
	s := newTestStore(&stubGateway{}, WithClock(mock))
	t.Cleanup(s.Close)

	s.mu.Lock()
	s.notifyLocked(NoticeSuccess, memorial.VariantFlower, "one", "")
	s.notifyLocked(NoticeFailure, memorial.VariantLeaf, "two", "")
	s.mu.Unlock()

	notes := s.Notifications()
	require.Len(t, notes, 2)

	s.Dismiss(notes[0].ID)
	s.Dismiss(999)
	notes = s.Notifications()
	require.Len(t, notes, 1)
	require.Equal(t, "two", notes[0].Title)

	mock.Add(DefaultNoticeTTL)
	require.Empty(t, s.Notifications())
}

func TestSweeperPrunesInBackground(t *testing.T) {
	mock := clock.NewMock()
	s := newTestStore(&stubGateway{}, WithClock(mock))
	t.Cleanup(s.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.StartSweeper(ctx)

	s.mu.Lock()
	s.highlightLocked(memorial.VariantFlower, 1, mock.Now().Add(time.Second))
	s.notifyLocked(NoticeSuccess, memorial.VariantFlower, "hi", "")
	s.mu.Unlock()

	mock.Add(DefaultNoticeTTL + time.Second)

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.highlights) == 0 && len(s.notices) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSnapshot_AggregatesFlags(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &stubGateway{
		listFlowers: func(context.Context, int) memorial.Envelope[[]memorial.Flower] {
			close(started)
			<-release
			return unreachable[[]memorial.Flower]()
		},
		listLeaves: func(context.Context, int) memorial.Envelope[[]memorial.Leaf] {
			return memorial.Failure[[]memorial.Leaf](500, "leaves broke", nil)
		},
	}
	s := newTestStore(gw, WithRetry(1, time.Millisecond))
	t.Cleanup(s.Close)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Refresh(ctx, memorial.VariantFlower) }()
	<-started

	snap := s.Snapshot()
	require.True(t, snap.IsLoadingInitial)
	require.True(t, snap.IsFetchingAny)

	require.Error(t, s.Refresh(ctx, memorial.VariantLeaf))
	require.EqualError(t, s.Snapshot().LastError, "leaves broke")

	close(release)
	require.Error(t, <-errCh)

	snap = s.Snapshot()
	require.False(t, snap.IsFetchingAny)
	require.EqualError(t, snap.LastError, "Could not load: server unreachable")
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	gw := &stubGateway{
		listFlowers: func(context.Context, int) memorial.Envelope[[]memorial.Flower] { return flowers(1, 2) },
	}
	s := newTestStore(gw)
	t.Cleanup(s.Close)
	require.NoError(t, s.Refresh(context.Background(), memorial.VariantFlower))

	snap := s.Snapshot()
	snap.Flowers[0].ID = 999
	require.Equal(t, []int64{1, 2}, flowerIDs(s.Snapshot()))
}

func TestRefresh_UnknownVariant(t *testing.T) {
	s := newTestStore(&stubGateway{})
	t.Cleanup(s.Close)
	require.Error(t, s.Refresh(context.Background(), memorial.Variant("vine")))
}
