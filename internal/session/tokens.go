package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// tokenExpiry reads the exp claim without verifying the signature; the
// backend verifies, this side only schedules refreshes.
func tokenExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// newTokens prefers an explicit expires_in over the token's own exp claim.
func newTokens(access, refresh string, expiresIn int64, now time.Time) models.Tokens {
	t := models.Tokens{AccessToken: access, RefreshToken: refresh}
	if expiresIn > 0 {
		t.ExpiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	} else {
		t.ExpiresAt = tokenExpiry(access)
	}
	return t
}
