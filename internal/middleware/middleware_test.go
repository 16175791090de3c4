package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	identities map[string]*auth.Identity
}

func (s stubVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if identity, ok := s.identities[token]; ok {
		return identity, nil
	}
	return nil, auth.ErrInvalidToken
}

func newVerifier() (stubVerifier, *auth.Identity) {
	identity := &auth.Identity{UserID: uuid.New(), Email: "amina@example.com", Role: models.RoleAttendee}
	return stubVerifier{identities: map[string]*auth.Identity{"good": identity}}, identity
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireAuth(t *testing.T) {
	verifier, identity := newVerifier()
	r := gin.New()
	r.GET("/private", RequireAuth(verifier), func(c *gin.Context) {
		fromCtx := auth.IdentityFrom(c.Request.Context())
		require.NotNil(t, fromCtx)
		c.String(http.StatusOK, CurrentIdentity(c).UserID.String())
	})

	w := serve(r, "/private", "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, identity.UserID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/private", "").Code)

	w = serve(r, "/private", "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestOptionalAuth(t *testing.T) {
	verifier, _ := newVerifier()
	r := gin.New()
	r.GET("/open", OptionalAuth(verifier), func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "known")
	})

	assert.Equal(t, "anonymous", serve(r, "/open", "").Body.String())
	assert.Equal(t, "known", serve(r, "/open", "good").Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/open", "forged").Code)
}

func TestRequireCapability(t *testing.T) {
	verifier, _ := newVerifier()
	r := gin.New()
	r.GET("/moderate", RequireAuth(verifier), RequireCapability(auth.CapEventsModerate), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/read", RequireAuth(verifier), RequireCapability(auth.CapEventsRead), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusForbidden, serve(r, "/moderate", "good").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/read", "good").Code)
}

func TestRequestLogger(t *testing.T) {
	verifier, identity := newVerifier()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/who", OptionalAuth(verifier), func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside handler")
		c.Status(http.StatusOK)
	})

	w := serve(r, "/who", "good")
	require.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var inside, outgoing map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &outgoing))

	assert.Equal(t, requestID, inside["request_id"])
	assert.Equal(t, identity.UserID.String(), inside["user_id"])
	assert.Equal(t, "Outgoing response", outgoing["message"])
	assert.EqualValues(t, http.StatusOK, outgoing["status"])
	assert.Equal(t, "attendee", outgoing["role"])

	buf.Reset()
	serve(r, "/who", "")
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &outgoing))
	assert.Equal(t, "anonymous", outgoing["user_id"])
	assert.Equal(t, "guest", outgoing["role"])
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	t.Cleanup(limiter.Stop)

	r := gin.New()
	r.GET("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "/login", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/login", "").Code)
	w := serve(r, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "31", w.Header().Get("Retry-After"))
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(0)
	t.Cleanup(limiter.Stop)
	for i := 0; i < 50; i++ {
		assert.True(t, limiter.allow("10.0.0.1"))
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(5)
	t.Cleanup(limiter.Stop)

	limiter.allow("10.0.0.1")
	limiter.cleanup(-time.Second)
	assert.Empty(t, limiter.limiters)
}
