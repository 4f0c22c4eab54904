package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/rs/zerolog/log"
)

const localIssuer = "stone-tracker-local"

// localService signs its own HS256 tokens. It backs the in-memory store in
// development, where there is no Firebase project to sign in against.
type localService struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

var _ Service = (*localService)(nil)

func NewLocalService(secret []byte, revocations RevocationStore) Service {
	return &localService{
		secret:      secret,
		ttl:         time.Hour,
		revocations: revocations,
		now:         time.Now,
	}
}

func (s *localService) SignInAnonymous(context.Context) (*Identity, error) {
	now := s.now().Truncate(time.Second)
	tok := jwt.New()
	for k, v := range map[string]any{
		jwt.SubjectKey:    uuid.NewString(),
		jwt.IssuerKey:     localIssuer,
		jwt.AudienceKey:   localIssuer,
		jwt.IssuedAtKey:   now,
		jwt.ExpirationKey: now.Add(s.ttl),
	} {
		if err := tok.Set(k, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	signed, err := jwt.Sign(tok, jwa.HS256, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", ErrUnavailable, err)
	}
	log.Info().Str("userID", tok.Subject()).Msg("local anonymous sign-in")
	return &Identity{
		UserID:    tok.Subject(),
		Token:     string(signed),
		ExpiresIn: s.ttl,
		IssuedAt:  now,
	}, nil
}

func (s *localService) CurrentIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	parsed, err := jwt.ParseString(token,
		jwt.WithVerify(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(localIssuer),
		jwt.WithAudience(localIssuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := checkRevoked(ctx, s.revocations, parsed.Subject(), parsed.IssuedAt()); err != nil {
		return nil, err
	}
	return &Identity{UserID: parsed.Subject(), Token: token, IssuedAt: parsed.IssuedAt()}, nil
}

func (s *localService) SignOut(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user", ErrUnauthorized)
	}
	if err := s.revocations.Revoke(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// checkRevoked rejects tokens issued at or before the user's last sign-out.
func checkRevoked(ctx context.Context, revocations RevocationStore, userID string, issuedAt time.Time) error {
	revokedAt, err := revocations.RevokedAt(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !revokedAt.IsZero() && !issuedAt.After(revokedAt) {
		return ErrRevoked
	}
	return nil
}
