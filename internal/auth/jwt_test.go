package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, algorithm string) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager("secret", algorithm, time.Hour, "mgltickets")
	require.NoError(t, err)
	return manager
}

func TestTokenManager_RoundTrip(t *testing.T) {
	for _, algorithm := range []string{"HS256", "HS384", "hs512"} {
		t.Run(algorithm, func(t *testing.T) {
			manager := newManager(t, algorithm)
			subject := uuid.New()

			token, expiresAt, err := manager.Issue(subject, models.RoleOrganizer, 0)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

			claims, err := manager.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, models.RoleOrganizer, claims.Role)
			assert.Equal(t, "mgltickets", claims.Issuer)

			id, err := claims.UserID()
			require.NoError(t, err)
			assert.Equal(t, subject, id)
		})
	}
}

func TestTokenManager_Expired(t *testing.T) {
	manager := newManager(t, "HS256")
	issuedAt := time.Now().Add(-2 * time.Hour)
	manager.now = func() time.Time { return issuedAt }

	token, _, err := manager.Issue(uuid.New(), models.RoleAttendee, time.Minute)
	require.NoError(t, err)

	_, err = manager.Parse(token)
	require.NoError(t, err, "valid while the clock is inside the ttl")

	manager.now = time.Now
	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsTampering(t *testing.T) {
	manager := newManager(t, "HS256")
	token, _, err := manager.Issue(uuid.New(), models.RoleAttendee, 0)
	require.NoError(t, err)

	other, err := NewTokenManager("other-secret", "HS256", time.Hour, "mgltickets")
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Parse("   ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	hs256 := newManager(t, "HS256")
	hs512 := newManager(t, "HS512")

	token, _, err := hs512.Issue(uuid.New(), models.RoleAdmin, 0)
	require.NoError(t, err)

	_, err = hs256.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", "RS256", time.Hour, "")
	assert.Error(t, err)
}

func TestTokenManager_MalformedSubject(t *testing.T) {
	manager := newManager(t, "HS256")

	claims := &Claims{
		Role: models.RoleAttendee,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.True(t, errors.Is(err, ErrMalformedPayload))

	_, _, err = manager.Issue(uuid.Nil, models.RoleAttendee, 0)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = TokenFromHeader("bearer   abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		_, err := TokenFromHeader(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}
