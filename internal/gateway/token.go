// ABOUTME: Local inspection of the persisted credential token.
// ABOUTME: Parses JWT expiry without verifying the signature; the backend verifies.

package gateway

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUsable reports whether token is worth presenting to the backend.
// A token that parses as a JWT with an exp claim in the past is not;
// anything else (opaque tokens, no exp claim) is left for the backend to
// judge. The signature is never checked here - the client has no secret.
func TokenUsable(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}
