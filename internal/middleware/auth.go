package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/metrics"
	"github.com/mgltickets/api/internal/services"
	"github.com/rs/zerolog"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.TokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			reject(c, err)
			return
		}
		if !authenticate(c, verifier, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through but still rejects a token
// that is present and invalid.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, err := auth.TokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			reject(c, err)
			return
		}
		if !authenticate(c, verifier, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, verifier TokenVerifier, token string) bool {
	ctx := c.Request.Context()
	identity, err := verifier.Verify(ctx, token)
	if err != nil {
		reject(c, err)
		return false
	}

	userLogger := zerolog.Ctx(ctx).With().
		Str("user_id", identity.UserID.String()).
		Str("role", string(identity.Role)).
		Logger()
	ctx = userLogger.WithContext(auth.WithIdentity(ctx, identity))
	c.Request = c.Request.WithContext(ctx)
	c.Set(identityKey, identity)
	return true
}

func reject(c *gin.Context, err error) {
	reason := "invalid_token"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		reason = "missing_token"
	case errors.Is(err, auth.ErrMalformedPayload):
		reason = "malformed_payload"
	case errors.Is(err, services.ErrUserNotFound):
		reason = "user_not_found"
	case errors.Is(err, services.ErrUserInactive):
		reason = "user_inactive"
	}

	if status := helpers.StatusFor(err); status != http.StatusUnauthorized {
		helpers.RespondWithServiceError(c, err)
		return
	}
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	zerolog.Ctx(c.Request.Context()).Warn().Str("reason", reason).Msg("authentication failed")
	c.Header("WWW-Authenticate", "Bearer")
	helpers.RespondWithError(c, http.StatusUnauthorized, "Could not validate credentials.")
}

// CurrentIdentity returns the authenticated caller, or nil.
func CurrentIdentity(c *gin.Context) *auth.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(*auth.Identity); ok {
			return identity
		}
	}
	return nil
}

// RequireCapability must run after RequireAuth.
func RequireCapability(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			reject(c, auth.ErrMissingToken)
			return
		}
		if !identity.Can(capability) {
			zerolog.Ctx(c.Request.Context()).Warn().Str("capability", string(capability)).Msg("permission denied")
			helpers.RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		c.Next()
	}
}
