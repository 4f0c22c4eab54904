package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoneTracker/services/collection"
	"stoneTracker/services/stone"
	"stoneTracker/services/user"
)

var epoch = time.Date(2018, 4, 27, 0, 0, 0, 0, time.UTC)

func doc(id string, minute int, stones ...string) user.Document {
	u := user.User{ID: id, Name: id, CreatedAt: epoch.Add(time.Duration(minute) * time.Minute)}
	for _, sid := range stones {
		s, _ := stone.Find(sid)
		u.Stones = append(u.Stones, s)
	}
	return user.Document{ID: id, Data: user.ToDocument(u)}
}

type result struct {
	batch user.Batch
	err   error
}

// scriptedFeed hands out results pushed by the test.
type scriptedFeed struct {
	ctx     context.Context
	results chan result
	stopped chan struct{}
	once    sync.Once
}

func (f *scriptedFeed) Next() (user.Batch, error) {
	select {
	case <-f.ctx.Done():
		return user.Batch{}, user.ErrFeedClosed
	case r := <-f.results:
		return r.batch, r.err
	}
}

func (f *scriptedFeed) Stop() {
	f.once.Do(func() { close(f.stopped) })
}

type scriptedStore struct {
	user.Store
	mu    sync.Mutex
	feeds []*scriptedFeed
	ready chan *scriptedFeed
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{ready: make(chan *scriptedFeed, 8)}
}

func (s *scriptedStore) SubscribeCollection(ctx context.Context) (user.Feed, error) {
	f := &scriptedFeed{ctx: ctx, results: make(chan result), stopped: make(chan struct{})}
	s.mu.Lock()
	s.feeds = append(s.feeds, f)
	s.mu.Unlock()
	s.ready <- f
	return f, nil
}

func (s *scriptedStore) subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

func nextFeed(t *testing.T, s *scriptedStore) *scriptedFeed {
	t.Helper()
	select {
	case f := <-s.ready:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no subscription opened")
		return nil
	}
}

func waitFor(t *testing.T, syncer *Synchronizer, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return cond(syncer.Snapshot()) }, 2*time.Second, 5*time.Millisecond)
	return syncer.Snapshot()
}

func ids(users []user.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestStateTransitions(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store, WithRetryDelay(time.Millisecond))
	assert.Equal(t, Uninitialized, s.Snapshot().State)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, Subscribing, s.Snapshot().State)

	feed := nextFeed(t, store)
	feed.results <- result{batch: user.Batch{Documents: []user.Document{doc("a", 0), doc("b", 1, stone.Power)}}}
	snap := waitFor(t, s, func(s Snapshot) bool { return s.State == Live })
	assert.Equal(t, []string{"a", "b"}, ids(snap.Users))
	assert.NoError(t, snap.Err)

	s.Close()
	assert.Equal(t, Terminated, s.Snapshot().State)
	assert.Equal(t, []string{"a", "b"}, ids(s.Snapshot().Users))
}

func TestBatchReplacesWholeRoster(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	feed := nextFeed(t, store)
	feed.results <- result{batch: user.Batch{Documents: []user.Document{doc("a", 0), doc("b", 1)}}}
	waitFor(t, s, func(s Snapshot) bool { return len(s.Users) == 2 })

	feed.results <- result{batch: user.Batch{Documents: []user.Document{doc("c", 2)}}}
	snap := waitFor(t, s, func(s Snapshot) bool { return len(s.Users) == 1 })
	assert.Equal(t, []string{"c"}, ids(snap.Users))
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	broken := doc("broken", 2)
	delete(broken.Data, "name")
	docs := []user.Document{doc("a", 0), doc("b", 1, stone.Time), broken, doc("c", 3), doc("d", 4, stone.Mind, stone.Soul)}

	nextFeed(t, store).results <- result{batch: user.Batch{Documents: docs}}
	snap := waitFor(t, s, func(s Snapshot) bool { return s.State == Live })
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(snap.Users))
	assert.Equal(t, 1, snap.Skipped)
}

func TestErrorKeepsLastKnownRoster(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store, WithRetryDelay(time.Millisecond))
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	feed := nextFeed(t, store)
	feed.results <- result{batch: user.Batch{Documents: []user.Document{doc("a", 0), doc("b", 1)}}}
	waitFor(t, s, func(s Snapshot) bool { return s.State == Live })

	boom := errors.New("stream reset")
	feed.results <- result{err: boom}
	snap := waitFor(t, s, func(s Snapshot) bool { return s.State == Error })
	assert.ErrorIs(t, snap.Err, boom)
	assert.Equal(t, []string{"a", "b"}, ids(snap.Users))

	retry := nextFeed(t, store)
	<-feed.stopped
	retry.results <- result{batch: user.Batch{Documents: []user.Document{doc("a", 0), doc("b", 1), doc("c", 2)}}}
	snap = waitFor(t, s, func(s Snapshot) bool { return s.State == Live })
	assert.NoError(t, snap.Err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snap.Users))
	assert.Equal(t, 2, store.subscriptions())
}

func TestStartTwice(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(context.Background()))
	feed := nextFeed(t, store)

	s.Close()
	s.Close()

	select {
	case <-feed.stopped:
	case <-time.After(time.Second):
		t.Fatal("feed not stopped")
	}
	version := s.Snapshot().Version

	// The delivery goroutine is gone; nothing can be applied any more.
	s.apply(user.Batch{Documents: []user.Document{doc("late", 0)}})
	s.fail(errors.New("late failure"))
	assert.Equal(t, version, s.Snapshot().Version)
	assert.Empty(t, s.Snapshot().Users)
	assert.Equal(t, Terminated, s.Snapshot().State)

	assert.ErrorIs(t, s.Start(context.Background()), ErrTerminated)
}

func TestCloseBeforeStart(t *testing.T) {
	s := NewSynchronizer(newScriptedStore())
	s.Close()
	assert.Equal(t, Terminated, s.Snapshot().State)
	assert.ErrorIs(t, s.Start(context.Background()), ErrTerminated)
}

func TestParentContextCancellation(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store, WithRetryDelay(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	feed := nextFeed(t, store)

	cancel()
	<-feed.stopped
	s.Close()
	assert.Equal(t, 1, store.subscriptions())
}

func TestWatch(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)

	ch, unsubscribe := s.Watch()
	first := <-ch
	assert.Equal(t, Uninitialized, first.State)

	require.NoError(t, s.Start(context.Background()))
	feed := nextFeed(t, store)
	feed.results <- result{batch: user.Batch{Documents: []user.Document{doc("a", 0)}}}
	waitFor(t, s, func(s Snapshot) bool { return s.State == Live })

	latest := <-ch
	assert.Equal(t, Live, latest.State, "slow watchers only see the latest snapshot")
	assert.Equal(t, []string{"a"}, ids(latest.Users))

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	other, _ := s.Watch()
	s.Close()
	var last Snapshot
	for snap := range other {
		last = snap
	}
	assert.Equal(t, Terminated, last.State)

	closed, _ := s.Watch()
	snap, open := <-closed
	assert.True(t, open)
	assert.Equal(t, Terminated, snap.State)
	_, open = <-closed
	assert.False(t, open)
}

func TestUnreadWatcherDoesNotBlockDelivery(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)
	_, _ = s.Watch()
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	feed := nextFeed(t, store)
	for i := 0; i < 5; i++ {
		docs := make([]user.Document, 0, i+1)
		for j := 0; j <= i; j++ {
			docs = append(docs, doc(string(rune('a'+j)), j))
		}
		feed.results <- result{batch: user.Batch{Documents: docs}}
	}
	waitFor(t, s, func(s Snapshot) bool { return len(s.Users) == 5 })
}

func TestFindReturnsCopy(t *testing.T) {
	store := newScriptedStore()
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	nextFeed(t, store).results <- result{batch: user.Batch{Documents: []user.Document{doc("a", 0, stone.Space)}}}
	waitFor(t, s, func(s Snapshot) bool { return s.State == Live })

	u, ok := s.Find("a")
	require.True(t, ok)
	u.Stones[0].AcquiredFrom = "Loki"
	again, _ := s.Find("a")
	assert.Empty(t, again.Stones[0].AcquiredFrom)

	_, ok = s.Find("nobody")
	assert.False(t, ok)
}

// The scenarios below run against the in-memory store, whose feed behaves
// like the Firestore listener.

func TestNewUserAppearsInRoster(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(ctx))
	defer s.Close()

	u, err := user.NewUserService(store).CreateUser(ctx, "anon-1", user.Profile{})
	require.NoError(t, err)
	assert.Empty(t, u.Stones)

	snap := waitFor(t, s, func(s Snapshot) bool { return len(s.Users) == 1 })
	assert.Equal(t, "anon-1", snap.Users[0].ID)
	assert.Empty(t, snap.Users[0].Stones)
}

func TestRosterShowsSharedOwnership(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	users := user.NewUserService(store)
	stones := collection.NewService(store, collection.LockNone)
	s := NewSynchronizer(store)
	require.NoError(t, s.Start(ctx))
	defer s.Close()

	power, _ := stone.Find(stone.Power)
	for _, id := range []string{"ronan", "star-lord"} {
		u, err := users.CreateUser(ctx, id, user.Profile{Name: id})
		require.NoError(t, err)
		_, err = stones.AddStone(ctx, power, *u)
		require.NoError(t, err)
	}

	snap := waitFor(t, s, func(s Snapshot) bool {
		holders := 0
		for _, u := range s.Users {
			if u.Has(stone.Power) {
				holders++
			}
		}
		return holders == 2
	})
	assert.Len(t, snap.Users, 2)
}
