package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthorized is returned for missing, invalid or expired tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRevoked is returned for tokens issued before the user signed out.
	ErrRevoked = fmt.Errorf("%w: session was signed out", ErrUnauthorized)
	// ErrUnavailable wraps failures of the identity backend itself.
	ErrUnavailable = errors.New("identity provider unavailable")
)

const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com"
	DefaultJWKSURL            = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// Identity is an authenticated participant. Token fields are only filled on sign-in.
type Identity struct {
	UserID       string
	Token        string
	RefreshToken string
	ExpiresIn    time.Duration
	IssuedAt     time.Time
}

type Service interface {
	// SignInAnonymous creates a new anonymous account and returns its identity.
	SignInAnonymous(ctx context.Context) (*Identity, error)
	// CurrentIdentity verifies an ID token and returns who it belongs to.
	CurrentIdentity(ctx context.Context, token string) (*Identity, error)
	// SignOut invalidates every token issued to userID so far.
	SignOut(ctx context.Context, userID string) error
}

type Config struct {
	ProjectID          string
	APIKey             string
	IdentityToolkitURL string
	JWKSURL            string
}

func (c Config) issuer() string {
	return "https://securetoken.google.com/" + c.ProjectID
}

// KeySource yields the key set used to verify ID tokens. *jwk.AutoRefresh
// satisfies it.
type KeySource interface {
	Fetch(ctx context.Context, url string) (jwk.Set, error)
}

type service struct {
	http        *resty.Client
	cfg         Config
	keys        KeySource
	revocations RevocationStore
	now         func() time.Time
}

var _ Service = (*service)(nil)

// NewAutoRefreshKeys keeps the Google signing keys cached for the lifetime of ctx.
func NewAutoRefreshKeys(ctx context.Context, url string) *jwk.AutoRefresh {
	ar := jwk.NewAutoRefresh(ctx)
	ar.Configure(url, jwk.WithMinRefreshInterval(15*time.Minute))
	return ar
}

func NewService(client *resty.Client, cfg Config, keys KeySource, revocations RevocationStore) Service {
	if cfg.IdentityToolkitURL == "" {
		cfg.IdentityToolkitURL = DefaultIdentityToolkitURL
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = DefaultJWKSURL
	}
	cfg.IdentityToolkitURL = strings.TrimRight(cfg.IdentityToolkitURL, "/")
	return &service{
		http:        client,
		cfg:         cfg,
		keys:        keys,
		revocations: revocations,
		now:         time.Now,
	}
}

type signUpResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

type ToolkitError struct {
	Body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e ToolkitError) Error() string {
	return fmt.Sprintf("%d: %s", e.Body.Code, e.Body.Message)
}

func (s *service) SignInAnonymous(ctx context.Context) (*Identity, error) {
	response := &signUpResponse{}
	responseError := &ToolkitError{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("key", s.cfg.APIKey).
		SetBody(map[string]any{"returnSecureToken": true}).
		SetResult(response).
		SetError(responseError).
		Post(s.cfg.IdentityToolkitURL + "/v1/accounts:signUp")
	if err != nil {
		log.Error().Err(err).Msg("anonymous sign-in request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: anonymous sign-in rejected: %s", ErrUnavailable, responseError.Error())
	}
	if response.LocalID == "" || response.IDToken == "" {
		return nil, fmt.Errorf("%w: anonymous sign-in returned no identity", ErrUnavailable)
	}

	identity := &Identity{
		UserID:       response.LocalID,
		Token:        response.IDToken,
		RefreshToken: response.RefreshToken,
		IssuedAt:     s.now(),
	}
	if secs, err := strconv.Atoi(response.ExpiresIn); err == nil {
		identity.ExpiresIn = time.Duration(secs) * time.Second
	}
	log.Info().Str("userID", identity.UserID).Msg("anonymous sign-in")
	return identity, nil
}

func (s *service) CurrentIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	set, err := s.keys.Fetch(ctx, s.cfg.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch signing keys: %v", ErrUnavailable, err)
	}
	parsed, err := jwt.ParseString(token,
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.cfg.issuer()),
		jwt.WithAudience(s.cfg.ProjectID),
		jwt.WithClock(jwt.ClockFunc(s.now)),
		jwt.WithAcceptableSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if parsed.Subject() == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}

	if err := checkRevoked(ctx, s.revocations, parsed.Subject(), parsed.IssuedAt()); err != nil {
		return nil, err
	}
	return &Identity{
		UserID:   parsed.Subject(),
		Token:    token,
		IssuedAt: parsed.IssuedAt(),
	}, nil
}

func (s *service) SignOut(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user", ErrUnauthorized)
	}
	if err := s.revocations.Revoke(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Info().Str("userID", userID).Msg("signed out")
	return nil
}
