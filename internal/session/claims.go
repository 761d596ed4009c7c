package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are read without verifying the signature. Only the server can verify the token;
// the client uses them to skip a doomed /auth/me call and for display.
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
}

func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// ReadClaims parses tok as a JWT. ok is false for opaque tokens.
func ReadClaims(tok string) (Claims, bool) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &rc); err != nil {
		return Claims{}, false
	}
	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		t := rc.ExpiresAt.Time
		c.ExpiresAt = &t
	}
	return c, true
}
