package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoneTracker/services/stone"
	"stoneTracker/services/user"
)

type brokenStore struct {
	user.Store
	err error
}

func (b brokenStore) PutRecord(context.Context, string, user.User) error {
	return b.err
}

func mustStone(t *testing.T, id string) stone.Stone {
	t.Helper()
	s, ok := stone.Find(id)
	require.True(t, ok)
	return s
}

func newUser(t *testing.T, store user.Store, id string) user.User {
	t.Helper()
	u, err := user.NewUserService(store).CreateUser(context.Background(), id, user.Profile{Name: id})
	require.NoError(t, err)
	return *u
}

func TestAddStone(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	svc := NewService(store, LockNone)
	u := newUser(t, store, "strange")

	got, err := svc.AddStone(ctx, stone.WithAcquiredFrom(mustStone(t, stone.Time), "Doctor Strange"), u)
	require.NoError(t, err)
	require.Len(t, got.Stones, 1)
	assert.Empty(t, u.Stones, "input record is not modified")

	reloaded, err := store.GetRecord(ctx, "strange")
	require.NoError(t, err)
	require.Len(t, reloaded.Stones, 1)
	assert.Equal(t, stone.Time, reloaded.Stones[0].ID)
	assert.Equal(t, "Doctor Strange", reloaded.Stones[0].AcquiredFrom)
}

func TestAddStoneKeepsAcquisitionOrder(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	svc := NewService(store, LockNone)
	u := newUser(t, store, "thanos")

	for _, id := range []string{stone.Soul, stone.Power, stone.Mind} {
		next, err := svc.AddStone(ctx, mustStone(t, id), u)
		require.NoError(t, err)
		u = *next
	}
	ids := make([]string, 0, len(u.Stones))
	for _, s := range u.Stones {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{stone.Soul, stone.Power, stone.Mind}, ids)
}

func TestAddStoneUsesCatalogMetadata(t *testing.T) {
	store := user.NewMemoryStore()
	u := newUser(t, store, "loki")

	forged := stone.Stone{ID: stone.Space, Name: "Tesseract", Color: "pink", Power: "none", AcquiredFrom: " Odin "}
	got, err := NewService(store, LockNone).AddStone(context.Background(), forged, u)
	require.NoError(t, err)
	assert.Equal(t, stone.WithAcquiredFrom(mustStone(t, stone.Space), "Odin"), got.Stones[0])
}

func TestAddStoneTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	svc := NewService(store, LockNone)
	u := newUser(t, store, "gamora")

	for _, s := range stone.All() {
		first, err := svc.AddStone(ctx, s, u)
		require.NoError(t, err)

		_, err = svc.AddStone(ctx, s, *first)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateStone)
		assert.ErrorIs(t, err, user.ErrValidation)
	}
}

func TestAddStoneErrors(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	u := newUser(t, store, "nebula")

	_, err := NewService(store, LockNone).AddStone(ctx, stone.Stone{ID: "aether"}, u)
	assert.ErrorIs(t, err, ErrUnknownStone)

	_, err = NewService(store, LockNone).AddStone(ctx, mustStone(t, stone.Power), user.User{})
	assert.ErrorIs(t, err, user.ErrMissingID)

	down := errors.New("deadline exceeded")
	_, err = NewService(brokenStore{Store: store, err: down}, LockNone).AddStone(ctx, mustStone(t, stone.Power), u)
	assert.ErrorIs(t, err, down)

	reloaded, err := store.GetRecord(ctx, "nebula")
	require.NoError(t, err)
	assert.Empty(t, reloaded.Stones)
}

func TestTwoUsersCanHoldTheSameStone(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	svc := NewService(store, LockNone)
	power := mustStone(t, stone.Power)

	_, err := svc.AddStone(ctx, power, newUser(t, store, "ronan"))
	require.NoError(t, err)
	_, err = svc.AddStone(ctx, power, newUser(t, store, "quill"))
	require.NoError(t, err)

	for _, id := range []string{"ronan", "quill"} {
		u, err := store.GetRecord(ctx, id)
		require.NoError(t, err)
		assert.True(t, u.Has(stone.Power), id)
	}
}

func TestRemoveStone(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	svc := NewService(store, LockNone)
	u := newUser(t, store, "vision")
	u.Stones = []stone.Stone{mustStone(t, stone.Mind), mustStone(t, stone.Power), mustStone(t, stone.Time)}

	got, err := svc.RemoveStone(ctx, mustStone(t, stone.Power), u)
	require.NoError(t, err)
	assert.Equal(t, []stone.Stone{mustStone(t, stone.Mind), mustStone(t, stone.Time)}, got.Stones)
	assert.Len(t, u.Stones, 3, "input record is not modified")

	reloaded, err := store.GetRecord(ctx, "vision")
	require.NoError(t, err)
	assert.Equal(t, got.Stones, reloaded.Stones)
}

func TestRemoveAbsentStoneIsNoop(t *testing.T) {
	store := user.NewMemoryStore()
	u := newUser(t, store, "wanda")
	u.Stones = []stone.Stone{stone.WithAcquiredFrom(mustStone(t, stone.Mind), "Hydra")}

	got, err := NewService(store, LockNone).RemoveStone(context.Background(), mustStone(t, stone.Soul), u)
	require.NoError(t, err)
	assert.Equal(t, u.Stones, got.Stones)
}

func TestRemoveStoneErrors(t *testing.T) {
	store := user.NewMemoryStore()
	u := newUser(t, store, "hela")

	_, err := NewService(store, LockNone).RemoveStone(context.Background(), mustStone(t, stone.Soul), user.User{})
	assert.ErrorIs(t, err, user.ErrMissingID)

	down := errors.New("unavailable")
	_, err = NewService(brokenStore{Store: store, err: down}, LockNone).RemoveStone(context.Background(), mustStone(t, stone.Soul), u)
	assert.ErrorIs(t, err, down)
}

func TestLockPolicy(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	complete := newUser(t, store, "thanos")
	complete.Stones = stone.All()

	_, err := NewService(store, LockComplete).RemoveStone(ctx, mustStone(t, stone.Soul), complete)
	assert.ErrorIs(t, err, ErrCollectionLocked)

	got, err := NewService(store, LockNone).RemoveStone(ctx, mustStone(t, stone.Soul), complete)
	require.NoError(t, err)
	assert.Len(t, got.Stones, 5)

	partial := newUser(t, store, "ebony")
	_, err = NewService(store, LockComplete).AddStone(ctx, mustStone(t, stone.Soul), partial)
	assert.NoError(t, err)
}

func TestParseLockPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    LockPolicy
		wantErr bool
	}{
		{"", LockNone, false},
		{"none", LockNone, false},
		{" Complete ", LockComplete, false},
		{"always", LockNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLockPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestCreatedAtSurvivesMutations(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()
	when := time.Date(2019, 4, 26, 0, 0, 0, 0, time.UTC)
	u, err := user.NewUserService(store, user.WithClock(func() time.Time { return when })).
		CreateUser(ctx, "steve", user.Profile{Name: "Steve"})
	require.NoError(t, err)

	got, err := NewService(store, LockNone).AddStone(ctx, mustStone(t, stone.Space), *u)
	require.NoError(t, err)
	assert.Equal(t, when, got.CreatedAt)

	reloaded, err := store.GetRecord(ctx, "steve")
	require.NoError(t, err)
	assert.Equal(t, when, reloaded.CreatedAt)
}
