package roster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stoneTracker/services/user"
)

var (
	ErrAlreadyStarted = errors.New("roster: already started")
	ErrTerminated     = errors.New("roster: terminated")
)

type State int

const (
	Uninitialized State = iota
	Subscribing
	Live
	Error
	Terminated
)

func (s State) String() string {
	switch s {
	case Subscribing:
		return "subscribing"
	case Live:
		return "live"
	case Error:
		return "error"
	case Terminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}

// Snapshot is an immutable view of the roster. Users is shared between all
// readers and must not be modified.
type Snapshot struct {
	Users []user.User
	State State
	// Err is the last feed failure while State is Error.
	Err error
	// Skipped counts the documents of the last batch that could not be parsed.
	Skipped   int
	UpdatedAt time.Time
	Version   uint64
}

// Synchronizer keeps a live, createdAt ordered copy of every user record.
// Only its delivery goroutine replaces the snapshot; everyone else reads.
type Synchronizer struct {
	store      user.Store
	retryDelay time.Duration

	mu          sync.RWMutex
	snap        Snapshot
	started     bool
	terminated  bool
	cancel      context.CancelFunc
	done        chan struct{}
	watchers    map[int]chan Snapshot
	nextWatcher int

	closeOnce sync.Once
}

type Option func(*Synchronizer)

// WithRetryDelay sets how long to wait before reopening a failed feed.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.retryDelay = d
	}
}

func NewSynchronizer(store user.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:      store,
		retryDelay: 5 * time.Second,
		watchers:   make(map[int]chan Snapshot),
		snap:       Snapshot{Users: []user.User{}, State: Uninitialized},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the subscription and returns immediately; snapshots arrive
// asynchronously. It can only be called once.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return ErrTerminated
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.publishLocked(Snapshot{
		Users: s.snap.Users,
		State: Subscribing,
	})
	go s.run(ctx)
	return nil
}

// Close stops the subscription and waits for the delivery goroutine. No
// snapshot is applied once Close returns. Calling it again does nothing.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.terminated = true
		cancel, done := s.cancel, s.done
		s.publishLocked(Snapshot{
			Users:     s.snap.Users,
			State:     Terminated,
			Skipped:   s.snap.Skipped,
			UpdatedAt: s.snap.UpdatedAt,
		})
		for id, ch := range s.watchers {
			close(ch)
			delete(s.watchers, id)
		}
		s.mu.Unlock()

		if cancel != nil {
			cancel()
			<-done
		}
		log.Info().Msg("roster synchronizer closed")
	})
}

// Snapshot returns the current roster view.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Find returns a copy of the roster entry for id.
func (s *Synchronizer) Find(id string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.snap.Users {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return user.User{}, false
}

// Watch returns a channel receiving the current snapshot followed by every
// later one. Slow readers only see the most recent snapshot; delivery never
// waits for them. The channel is closed by the returned func or by Close.
func (s *Synchronizer) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		ch <- s.snap
		close(ch)
		return ch, func() {}
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	ch <- s.snap

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.watchers[id]; ok {
				close(c)
				delete(s.watchers, id)
			}
		})
	}
}

func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		s.fail(err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryDelay):
		}
		log.Info().Msg("reopening roster feed")
	}
}

// consume reads one feed until it fails or ctx ends.
func (s *Synchronizer) consume(ctx context.Context) error {
	feed, err := s.store.SubscribeCollection(ctx)
	if err != nil {
		return err
	}
	defer feed.Stop()

	for {
		batch, err := feed.Next()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.apply(batch)
	}
}

func (s *Synchronizer) apply(batch user.Batch) {
	users := make([]user.User, 0, len(batch.Documents))
	skipped := 0
	for _, doc := range batch.Documents {
		u, err := user.ParseRecord(doc.ID, doc.Data)
		if err != nil {
			skipped++
			log.Warn().Err(err).Str("userID", doc.ID).Msg("skipping malformed user record")
			continue
		}
		users = append(users, u)
	}
	updatedAt := batch.ReadAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.publishLocked(Snapshot{
		Users:     users,
		State:     Live,
		Skipped:   skipped,
		UpdatedAt: updatedAt,
	})
}

// fail records a feed failure. The last good roster stays in place.
func (s *Synchronizer) fail(err error) {
	log.Error().Err(err).Msg("roster feed failed")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.publishLocked(Snapshot{
		Users:     s.snap.Users,
		State:     Error,
		Err:       err,
		Skipped:   s.snap.Skipped,
		UpdatedAt: s.snap.UpdatedAt,
	})
}

func (s *Synchronizer) publishLocked(next Snapshot) {
	next.Version = s.snap.Version + 1
	s.snap = next
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
