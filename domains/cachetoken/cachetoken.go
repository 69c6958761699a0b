package cachetoken

import (
	"context"
	"time"
)

const (
	// Scope is the audience requested for cache bearer tokens.
	Scope = "https://redis.azure.com/.default"
	// RefreshWindow is how close to expiry a token may get before a request refreshes it.
	RefreshWindow = 60 * time.Second
)

type State string

const (
	StateUnset    State = "unset"
	StateValid    State = "valid"
	StateExpiring State = "expiring"
	StateExpired  State = "expired"
)

// Token is the bearer token currently authenticating the cache connection.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// StateAt classifies t at instant now. A nil token means static-password auth.
func (t *Token) StateAt(now time.Time) State {
	if t == nil {
		return StateUnset
	}
	remaining := t.ExpiresOn.Sub(now)
	switch {
	case remaining <= 0:
		return StateExpired
	case remaining < RefreshWindow:
		return StateExpiring
	default:
		return StateValid
	}
}

// NeedsRefresh reports whether a request observing t at now must refresh it.
func (t *Token) NeedsRefresh(now time.Time) bool {
	s := t.StateAt(now)
	return s == StateExpiring || s == StateExpired
}

// IReauthenticator re-issues AUTH on a live connection without replacing it.
type IReauthenticator interface {
	Reauthenticate(ctx context.Context, username, password string) error
}

type ICacheTokenUsecase interface {
	// EnsureFresh refreshes the token when it is inside RefreshWindow.
	EnsureFresh(ctx context.Context) error
	State() State
	// Snapshot returns a copy of the held token, or nil when unset.
	Snapshot() *Token
}
