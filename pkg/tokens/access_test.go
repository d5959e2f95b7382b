package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("user-1", "admin", time.Minute, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken("user-1", "user", time.Minute, secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAccessToken_Expired(t *testing.T) {
	tok, err := NewAccessToken("user-1", "user", -time.Minute, secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.Error(t, err)
}
