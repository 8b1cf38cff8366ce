// ABOUTME: Tests for local credential expiry inspection.
// ABOUTME: Expired JWTs are unusable; opaque or exp-less tokens are passed through.

package gateway

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenUsable_ValidJWT(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	assert.True(t, TokenUsable(token))
}

func TestTokenUsable_ExpiredJWT(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	assert.False(t, TokenUsable(token))
}

func TestTokenUsable_NoExpClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "alice"})

	assert.True(t, TokenUsable(token))
}

func TestTokenUsable_OpaqueToken(t *testing.T) {
	// Not a JWT at all: the backend is the only judge.
	assert.True(t, TokenUsable("opaque-bearer-token"))
}
