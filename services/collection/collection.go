package collection

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"stoneTracker/services/stone"
	"stoneTracker/services/user"
)

var (
	ErrDuplicateStone   = fmt.Errorf("%w: user already has this stone", user.ErrValidation)
	ErrUnknownStone     = fmt.Errorf("%w: unknown stone", user.ErrValidation)
	ErrCollectionLocked = fmt.Errorf("%w: collection is complete and locked", user.ErrValidation)
)

// Service applies the collection rules to a user record and persists the
// result. It never updates roster state itself; the roster catches up when
// the store feed reports the write.
type Service interface {
	// AddStone appends s to the end of u's collection. Other users are never
	// consulted: the same stone can be held by any number of users.
	AddStone(ctx context.Context, s stone.Stone, u user.User) (*user.User, error)
	// RemoveStone drops s from u's collection. Removing a stone u does not
	// hold is not an error.
	RemoveStone(ctx context.Context, s stone.Stone, u user.User) (*user.User, error)
}

type service struct {
	store  user.Store
	policy LockPolicy
}

var _ Service = (*service)(nil)

func NewService(store user.Store, policy LockPolicy) Service {
	return &service{
		store:  store,
		policy: policy,
	}
}

func (s *service) AddStone(ctx context.Context, st stone.Stone, u user.User) (*user.User, error) {
	if u.ID == "" {
		return nil, user.ErrMissingID
	}
	entry, ok := stone.Find(st.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStone, st.ID)
	}
	if s.policy.locks(u) {
		return nil, ErrCollectionLocked
	}
	if u.Has(st.ID) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateStone, st.ID)
	}

	updated := u.Clone()
	updated.Stones = append(updated.Stones, stone.WithAcquiredFrom(entry, st.AcquiredFrom))
	if err := s.store.PutRecord(ctx, updated.ID, updated); err != nil {
		log.Error().Err(err).Str("userID", u.ID).Str("stone", st.ID).Msg("failed to save added stone")
		return nil, fmt.Errorf("failed to add stone: %w", err)
	}
	log.Debug().Str("userID", u.ID).Str("stone", st.ID).Int("count", updated.Count()).Msg("stone added")
	return &updated, nil
}

func (s *service) RemoveStone(ctx context.Context, st stone.Stone, u user.User) (*user.User, error) {
	if u.ID == "" {
		return nil, user.ErrMissingID
	}
	if s.policy.locks(u) {
		return nil, ErrCollectionLocked
	}

	updated := u.Clone()
	updated.Stones = updated.Stones[:0]
	for _, owned := range u.Stones {
		if owned.ID != st.ID {
			updated.Stones = append(updated.Stones, owned)
		}
	}
	if err := s.store.PutRecord(ctx, updated.ID, updated); err != nil {
		log.Error().Err(err).Str("userID", u.ID).Str("stone", st.ID).Msg("failed to save removed stone")
		return nil, fmt.Errorf("failed to remove stone: %w", err)
	}
	log.Debug().Str("userID", u.ID).Str("stone", st.ID).Int("count", updated.Count()).Msg("stone removed")
	return &updated, nil
}
