package usersvc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("sekrit", time.Hour)

	token, err := issuer.Issue("someone@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", email)
}

func TestTokenSignedWithDifferentSecretIsRejected(t *testing.T) {
	token, err := NewTokenIssuer("sekrit", time.Hour).Issue("someone@example.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer("some-other-secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestGarbageTokenIsRejected(t *testing.T) {
	_, err := NewTokenIssuer("sekrit", time.Hour).Verify("not.a.token")
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	issuer := NewTokenIssuer("sekrit", time.Minute)

	token, err := issuer.Issue("someone@example.com")
	require.NoError(t, err)

	issuer.timeFunc = func() time.Time { return time.Now().Add(time.Minute * 2) }
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenJustPastExpiryIsStillAcceptedWithinLeeway(t *testing.T) {
	issuer := NewTokenIssuer("sekrit", time.Minute)

	token, err := issuer.Issue("someone@example.com")
	require.NoError(t, err)

	issuer.timeFunc = func() time.Time { return time.Now().Add(time.Minute + tokenLeeway/2) }
	_, err = issuer.Verify(token)
	assert.NoError(t, err)
}

func TestTokenWithoutSubjectIsRejected(t *testing.T) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("sekrit"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("sekrit", time.Hour).Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subject")
}

func TestBearerTokenHeaderParsing(t *testing.T) {
	newRequest := func(authorization string) *http.Request {
		req := httptest.NewRequest("GET", "/protected", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		return req
	}

	token, ok := bearerToken(newRequest("Bearer abc123"))
	require.True(t, ok)
	assert.Equal(t, "abc123", token)

	token, ok = bearerToken(newRequest("bearer abc123"))
	require.True(t, ok, "scheme should be case-insensitive")
	assert.Equal(t, "abc123", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc123"} {
		_, ok := bearerToken(newRequest(header))
		assert.False(t, ok, "should not have accepted %q", header)
	}
}
