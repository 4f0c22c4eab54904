package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoneTracker/services/stone"
)

type failingStore struct {
	Store
	getErr error
	putErr error
}

func (f failingStore) GetRecord(ctx context.Context, id string) (*User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.GetRecord(ctx, id)
}

func (f failingStore) PutRecord(ctx context.Context, id string, u User) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.PutRecord(ctx, id, u)
}

func fixedClock() time.Time {
	return created
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewUserService(store, WithClock(fixedClock))

	u, err := svc.CreateUser(ctx, "uid-1", Profile{Name: "  Peter ", Email: " peter@parker.com "})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.ID)
	assert.Equal(t, "Peter", u.Name)
	assert.Equal(t, "peter@parker.com", u.Email)
	assert.Empty(t, u.Stones)
	assert.Equal(t, created, u.CreatedAt)

	stored, err := store.GetRecord(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, *u, *stored)
}

func TestCreateUserDefaultName(t *testing.T) {
	ctx := context.Background()

	u, err := NewUserService(NewMemoryStore()).CreateUser(ctx, "uid-1", Profile{})
	require.NoError(t, err)
	assert.Equal(t, DefaultName, u.Name)

	svc := NewUserService(NewMemoryStore(), WithNameGenerator(func() string { return "Mad Titan" }))
	u, err = svc.CreateUser(ctx, "uid-2", Profile{Name: "   "})
	require.NoError(t, err)
	assert.Equal(t, "Mad Titan", u.Name)
}

func TestCreateUserKeepsExistingRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	first := NewUserService(store, WithClock(fixedClock))
	_, err := first.CreateUser(ctx, "uid-1", Profile{Name: "Thor"})
	require.NoError(t, err)

	existing, err := store.GetRecord(ctx, "uid-1")
	require.NoError(t, err)
	existing.Stones = []stone.Stone{stone.All()[0]}
	require.NoError(t, store.PutRecord(ctx, "uid-1", *existing))

	later := NewUserService(store, WithClock(func() time.Time { return created.Add(time.Hour) }))
	u, err := later.CreateUser(ctx, "uid-1", Profile{Name: "Someone Else"})
	require.NoError(t, err)
	assert.Equal(t, "Thor", u.Name)
	assert.Equal(t, created, u.CreatedAt)
	assert.Len(t, u.Stones, 1)
}

func TestCreateUserErrors(t *testing.T) {
	ctx := context.Background()
	backendDown := errors.New("unavailable")

	_, err := NewUserService(NewMemoryStore()).CreateUser(ctx, "", Profile{})
	assert.ErrorIs(t, err, ErrValidation)

	svc := NewUserService(failingStore{Store: NewMemoryStore(), getErr: backendDown})
	_, err = svc.CreateUser(ctx, "uid-1", Profile{})
	assert.ErrorIs(t, err, backendDown)

	svc = NewUserService(failingStore{Store: NewMemoryStore(), putErr: backendDown})
	_, err = svc.CreateUser(ctx, "uid-1", Profile{})
	assert.ErrorIs(t, err, backendDown)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewUserService(store, WithClock(fixedClock))
	_, err := svc.CreateUser(ctx, "uid-1", Profile{Name: "Natasha"})
	require.NoError(t, err)

	existing, err := store.GetRecord(ctx, "uid-1")
	require.NoError(t, err)
	existing.Stones = []stone.Stone{stone.WithAcquiredFrom(stone.All()[3], "Vormir")}
	require.NoError(t, store.PutRecord(ctx, "uid-1", *existing))

	u, err := svc.UpdateProfile(ctx, "uid-1", Profile{Name: " Black Widow ", Email: "nat@shield.gov"})
	require.NoError(t, err)
	assert.Equal(t, "Black Widow", u.Name)
	assert.Equal(t, "nat@shield.gov", u.Email)
	assert.Equal(t, created, u.CreatedAt)
	require.Len(t, u.Stones, 1)
	assert.Equal(t, "Vormir", u.Stones[0].AcquiredFrom)

	stored, err := store.GetRecord(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, *u, *stored)
}

func TestUpdateProfileErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(NewMemoryStore())

	_, err := svc.UpdateProfile(ctx, "uid-1", Profile{Name: "  "})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = svc.UpdateProfile(ctx, "missing", Profile{Name: "Clint"})
	assert.ErrorIs(t, err, ErrNotFound)
}
