package domain

import (
	"context"
	"errors"
)

var (
	ErrStateMismatch = errors.New("login state does not match")
	ErrNonceMismatch = errors.New("id token nonce does not match")
	ErrMissingCode   = errors.New("authorization code missing from callback")
	ErrNoLogin       = errors.New("no login in progress for this session")
)

// User is the signed-in identity kept in the session.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName prefers the full name, then the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// LoginAttempt is what a login redirect leaves in the session until the
// provider calls back.
type LoginAttempt struct {
	State    string
	Nonce    string
	Verifier string
	Next     string
}

// IIdentityProvider is an OpenID Connect provider using the authorization
// code flow with PKCE.
type IIdentityProvider interface {
	AuthCodeURL(state, nonce, verifier string) string
	Exchange(ctx context.Context, code, verifier, nonce string) (*User, error)
	// LogoutURL returns "" when the provider has no end-session endpoint.
	LogoutURL(postLogoutRedirect string) string
}
