package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stoneTracker/services/stone"
)

type Service interface {
	GetUser(ctx context.Context, ID string) (*User, error)
	// CreateUser persists a fresh record with no stones for the identity ID.
	// If the record already exists it is returned untouched.
	CreateUser(ctx context.Context, ID string, profile Profile) (*User, error)
	// UpdateProfile rewrites name and email, keeping stones and createdAt.
	UpdateProfile(ctx context.Context, ID string, profile Profile) (*User, error)
}

type userService struct {
	store    Store
	now      func() time.Time
	nameFunc func() string
}

var _ Service = (*userService)(nil)

type Option func(*userService)

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *userService) {
		s.now = now
	}
}

// WithNameGenerator sets how a name is picked for users that sign up
// without one. Defaults to DefaultName.
func WithNameGenerator(fn func() string) Option {
	return func(s *userService) {
		s.nameFunc = fn
	}
}

func NewUserService(store Store, opts ...Option) Service {
	s := &userService{
		store:    store,
		now:      time.Now,
		nameFunc: func() string { return DefaultName },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) GetUser(ctx context.Context, ID string) (*User, error) {
	return s.store.GetRecord(ctx, ID)
}

func (s *userService) CreateUser(ctx context.Context, ID string, profile Profile) (*User, error) {
	if ID == "" {
		return nil, ErrMissingID
	}
	existing, err := s.store.GetRecord(ctx, ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	profile = profile.Normalize()
	if profile.Name == "" {
		profile.Name = s.nameFunc()
	}
	u := User{
		ID:        ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Stones:    []stone.Stone{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.PutRecord(ctx, ID, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info().Str("userID", ID).Msg("created user")
	return &u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, ID string, profile Profile) (*User, error) {
	profile = profile.Normalize()
	if profile.Name == "" {
		return nil, ErrMissingName
	}
	u, err := s.store.GetRecord(ctx, ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	updated := u.Clone()
	updated.Name = profile.Name
	updated.Email = profile.Email
	if err := s.store.PutRecord(ctx, ID, updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &updated, nil
}
