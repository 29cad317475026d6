package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned by TokenExpiry for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpired reports whether token carries an exp claim that is before now.
// Opaque tokens and tokens without exp are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
