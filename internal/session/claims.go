package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a token without verifying it.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Opaque is set when the token is not a JWT.
	Opaque bool
}

// Inspect decodes the token's claims for display. The signature is not
// checked; the backend remains the only authority on validity.
func Inspect(token string) TokenInfo {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Opaque: true}
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if raw, ok := claims["sub"]; ok {
		info.Subject = fmt.Sprint(raw)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}
