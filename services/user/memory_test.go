package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFeedDeliversOrderedSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	feed, err := store.SubscribeCollection(ctx)
	require.NoError(t, err)
	defer feed.Stop()

	b, err := feed.Next()
	require.NoError(t, err)
	assert.Empty(t, b.Documents)

	later := User{Name: "Later", Stones: nil, CreatedAt: created.Add(time.Minute)}
	earlier := User{Name: "Earlier", Stones: nil, CreatedAt: created}
	require.NoError(t, store.PutRecord(ctx, "b", later))
	require.NoError(t, store.PutRecord(ctx, "a", earlier))

	b, err = feed.Next()
	require.NoError(t, err)
	require.Len(t, b.Documents, 2)
	assert.Equal(t, "a", b.Documents[0].ID)
	assert.Equal(t, "b", b.Documents[1].ID)
}

func TestMemoryFeedSkipsDocumentsWithoutCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	store.PutRaw("no-created", map[string]any{"name": "x", "stones": []any{}})
	store.PutRaw("bad-created", map[string]any{"name": "x", "stones": []any{}, "createdAt": "soon"})

	feed, err := store.SubscribeCollection(context.Background())
	require.NoError(t, err)
	defer feed.Stop()

	b, err := feed.Next()
	require.NoError(t, err)
	require.Len(t, b.Documents, 1)
	assert.Equal(t, "bad-created", b.Documents[0].ID)
}

func TestMemoryFeedStop(t *testing.T) {
	store := NewMemoryStore()
	feed, err := store.SubscribeCollection(context.Background())
	require.NoError(t, err)

	_, err = feed.Next()
	require.NoError(t, err)

	feed.Stop()
	feed.Stop()

	_, err = feed.Next()
	assert.ErrorIs(t, err, ErrFeedClosed)
	require.NoError(t, store.PutRecord(context.Background(), "a", User{Name: "a", CreatedAt: created}))
}

func TestMemorySubscribeWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().SubscribeCollection(ctx)
	assert.ErrorIs(t, err, ErrFeedClosed)
}
