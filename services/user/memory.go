package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Every write publishes a fresh snapshot
// to open feeds, the way the Firestore listener does.
type MemoryStore struct {
	mu    sync.Mutex
	docs  map[string]map[string]any
	feeds map[*memoryFeed]struct{}
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string]map[string]any),
		feeds: make(map[*memoryFeed]struct{}),
	}
}

func (m *MemoryStore) GetRecord(_ context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	m.mu.Lock()
	data, ok := m.docs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	u, err := ParseRecord(id, data)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *MemoryStore) PutRecord(_ context.Context, id string, u User) error {
	if id == "" {
		return ErrMissingID
	}
	m.PutRaw(id, ToDocument(u))
	return nil
}

// PutRaw stores data as is, without validation, and notifies feeds.
func (m *MemoryStore) PutRaw(id string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = data
	m.publishLocked()
}

func (m *MemoryStore) SubscribeCollection(ctx context.Context) (Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrFeedClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	f := &memoryFeed{
		ctx:     ctx,
		cancel:  cancel,
		batches: make(chan Batch, 1),
		owner:   m,
	}
	m.mu.Lock()
	m.feeds[f] = struct{}{}
	f.offer(m.batchLocked())
	m.mu.Unlock()
	return f, nil
}

func (m *MemoryStore) publishLocked() {
	if len(m.feeds) == 0 {
		return
	}
	b := m.batchLocked()
	for f := range m.feeds {
		f.offer(b)
	}
}

// batchLocked orders documents by createdAt, dropping those without one as
// the ordered Firestore query does.
func (m *MemoryStore) batchLocked() Batch {
	type entry struct {
		doc     Document
		created time.Time
	}
	entries := make([]entry, 0, len(m.docs))
	for id, data := range m.docs {
		created, ok := data[fieldCreatedAt].(time.Time)
		if !ok {
			if _, present := data[fieldCreatedAt]; !present {
				continue
			}
		}
		entries = append(entries, entry{doc: Document{ID: id, Data: data}, created: created})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].created.Equal(entries[j].created) {
			return entries[i].doc.ID < entries[j].doc.ID
		}
		return entries[i].created.Before(entries[j].created)
	})
	b := Batch{Documents: make([]Document, 0, len(entries)), ReadAt: time.Now()}
	for _, e := range entries {
		b.Documents = append(b.Documents, e.doc)
	}
	return b
}

func (m *MemoryStore) remove(f *memoryFeed) {
	m.mu.Lock()
	delete(m.feeds, f)
	m.mu.Unlock()
}

type memoryFeed struct {
	ctx     context.Context
	cancel  context.CancelFunc
	batches chan Batch
	owner   *MemoryStore
	once    sync.Once
}

// offer replaces any undelivered batch; feeds only care about the latest state.
func (f *memoryFeed) offer(b Batch) {
	select {
	case <-f.batches:
	default:
	}
	f.batches <- b
}

func (f *memoryFeed) Next() (Batch, error) {
	if f.ctx.Err() != nil {
		return Batch{}, ErrFeedClosed
	}
	select {
	case <-f.ctx.Done():
		return Batch{}, ErrFeedClosed
	case b := <-f.batches:
		return b, nil
	}
}

func (f *memoryFeed) Stop() {
	f.once.Do(func() {
		f.cancel()
		f.owner.remove(f)
	})
}
