package validator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/gin-gonic/gin"
	middleware "github.com/oapi-codegen/gin-middleware"

	"stoneTracker/services/session"
)

const (
	identityKey  = "identity"
	authErrorKey = "auth_error"
	schemeName   = "bearerAuth"
)

var (
	ErrNoAuthHeader      = errors.New("Authorization header is missing")
	ErrInvalidAuthHeader = errors.New("Authorization header is malformed")
)

// IdentityVerifier turns a bearer token into the identity it was issued to.
type IdentityVerifier interface {
	CurrentIdentity(ctx context.Context, token string) (*session.Identity, error)
}

// FromContext returns the identity the authenticator stored for this request.
func FromContext(c *gin.Context) (*session.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*session.Identity)
	return identity, ok
}

// AuthError returns why authentication failed for this request, or nil.
func AuthError(c *gin.Context) error {
	v, ok := c.Get(authErrorKey)
	if !ok {
		return nil
	}
	err, _ := v.(error)
	return err
}

// GetJWSFromRequest extracts a JWS string from an Authorization: Bearer <jws> header
func GetJWSFromRequest(req *http.Request) (string, error) {
	authHdr := req.Header.Get("Authorization")
	if authHdr == "" {
		return "", ErrNoAuthHeader
	}
	// We expect a header value of the form "Bearer <token>", with 1 space after
	// Bearer.
	prefix := "Bearer "
	if !strings.HasPrefix(authHdr, prefix) {
		return "", ErrInvalidAuthHeader
	}
	return strings.TrimPrefix(authHdr, prefix), nil
}

// NewAuthenticator verifies bearer tokens for operations secured by
// bearerAuth and stores the resulting identity on the gin context.
func NewAuthenticator(verifier IdentityVerifier) openapi3filter.AuthenticationFunc {
	return func(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
		if input.SecuritySchemeName != schemeName {
			return fmt.Errorf("security scheme %s != '%s'", input.SecuritySchemeName, schemeName)
		}
		gCtx := middleware.GetGinContext(ctx)

		fail := func(err error) error {
			if gCtx != nil {
				gCtx.Set(authErrorKey, err)
			}
			return err
		}

		jws, err := GetJWSFromRequest(input.RequestValidationInput.Request)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", session.ErrUnauthorized, err))
		}
		identity, err := verifier.CurrentIdentity(ctx, jws)
		if err != nil {
			return fail(err)
		}
		if gCtx != nil {
			gCtx.Set(identityKey, identity)
		}
		return nil
	}
}
