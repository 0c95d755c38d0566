package backend

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of access-token claims the console reads.
// The backend embeds the user's role and base in the JWT it issues, which
// lets the console gate action visibility without an extra lookup. The
// claims are parsed unverified: signature verification is the backend's
// job, and the console never treats these values as authorization.
type TokenClaims struct {
	Subject   string
	Role      Role
	BaseID    int64
	ExpiresAt time.Time
}

// ParseTokenClaims extracts claims from a raw access token without
// verifying its signature.
func ParseTokenClaims(rawToken string) (TokenClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return TokenClaims{}, errors.New("empty token")
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return TokenClaims{}, err
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return TokenClaims{}, errors.New("error extracting claims")
	}

	out := TokenClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = Role(role)
	}
	if baseID, ok := claims["baseId"].(float64); ok {
		out.BaseID = int64(baseID)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether the access token lapsed before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
