package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT without verifying its
// signature; the backend remains the authority on validity. ok is false for
// opaque tokens and JWTs without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// tokenTTL derives a storage TTL from the token's exp claim, or 0.
func tokenTTL(token string, now time.Time) time.Duration {
	exp, ok := TokenExpiry(token)
	if !ok {
		return 0
	}
	if ttl := exp.Sub(now); ttl > 0 {
		return ttl
	}
	return -1
}
