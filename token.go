package jwtbearer

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the managed credential. IssuedAt and ExpiresAt are stamped locally
// when the exchange response arrives; ExpiresAt - IssuedAt equals the
// server-reported expires_in.
type Token struct {
	AccessToken string    `json:"accessToken"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Valid reports whether the token holds a usable credential at the given time.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// ExpiresWithin reports whether the token is inside the given window of its
// expiry at the given time.
func (t *Token) ExpiresWithin(now time.Time, window time.Duration) bool {
	return t.ExpiresAt.Sub(now) < window
}

// OAuth2Token converts to the golang.org/x/oauth2 token representation.
func (t *Token) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		Expiry:      t.ExpiresAt,
	}
}
