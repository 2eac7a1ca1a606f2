// Package token issues, validates and revokes the signed tokens that carry
// identity between requests. Access and refresh tokens are independent: each
// has its own lifetime and revoking one never touches the other.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the typ claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the praxis JWT payload. Only identity travels in the token;
// permissions are re-fetched live so grants revoked mid-session take effect
// on the next request.
type Claims struct {
	UserID   int64    `json:"uid"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Type     string   `json:"typ"`
	jwt.RegisteredClaims
}

func newClaims(userID int64, username string, roles []string, typ string, ttl time.Duration, now time.Time) *Claims {
	return &Claims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    "praxis",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// RemainingTTL reports how long until the claims expire. Zero or negative
// means already expired.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
