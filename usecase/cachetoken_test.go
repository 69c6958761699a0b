package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	domainCacheToken "github.com/AzielCF/az-chat/domains/cachetoken"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCredential struct {
	mu     sync.Mutex
	token  azcore.AccessToken
	err    error
	calls  int
	scopes []string
}

func (s *stubCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.scopes = append(s.scopes, opts.Scopes...)
	if s.err != nil {
		return azcore.AccessToken{}, s.err
	}
	return s.token, nil
}

type stubReauthenticator struct {
	mu        sync.Mutex
	err       error
	usernames []string
	passwords []string
}

func (s *stubReauthenticator) Reauthenticate(_ context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames = append(s.usernames, username)
	s.passwords = append(s.passwords, password)
	return s.err
}

var tokenNow = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return tokenNow }

func TestCacheToken_ValidTokenIsLeftAlone(t *testing.T) {
	cred := &stubCredential{}
	conn := &stubReauthenticator{}
	initial := &domainCacheToken.Token{Value: "old", ExpiresOn: tokenNow.Add(domainCacheToken.RefreshWindow)}
	svc := newCacheTokenService(cred, conn, "app-id", initial, nil, fixedClock)

	require.NoError(t, svc.EnsureFresh(context.Background()))

	assert.Zero(t, cred.calls)
	assert.Empty(t, conn.passwords)
	assert.Equal(t, domainCacheToken.StateValid, svc.State())
}

func TestCacheToken_ExpiringTokenRefreshesOnce(t *testing.T) {
	newExpiry := tokenNow.Add(time.Hour)
	cred := &stubCredential{token: azcore.AccessToken{Token: "new", ExpiresOn: newExpiry}}
	conn := &stubReauthenticator{}
	initial := &domainCacheToken.Token{Value: "old", ExpiresOn: tokenNow.Add(30 * time.Second)}
	svc := newCacheTokenService(cred, conn, "app-id", initial, nil, fixedClock)
	require.Equal(t, domainCacheToken.StateExpiring, svc.State())

	require.NoError(t, svc.EnsureFresh(context.Background()))

	assert.Equal(t, 1, cred.calls)
	assert.Equal(t, []string{domainCacheToken.Scope}, cred.scopes)
	assert.Equal(t, []string{"app-id"}, conn.usernames)
	assert.Equal(t, []string{"new"}, conn.passwords)

	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "new", snap.Value)
	assert.Equal(t, newExpiry, snap.ExpiresOn)
	assert.Equal(t, domainCacheToken.StateValid, svc.State())
}

func TestCacheToken_ConcurrentRequestsRefreshOnce(t *testing.T) {
	cred := &stubCredential{token: azcore.AccessToken{Token: "new", ExpiresOn: tokenNow.Add(time.Hour)}}
	conn := &stubReauthenticator{}
	initial := &domainCacheToken.Token{Value: "old", ExpiresOn: tokenNow.Add(-time.Minute)}
	svc := newCacheTokenService(cred, conn, "app-id", initial, nil, fixedClock)
	require.Equal(t, domainCacheToken.StateExpired, svc.State())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.EnsureFresh(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cred.calls)
	assert.Len(t, conn.passwords, 1)
}

func TestCacheToken_FetchFailureKeepsToken(t *testing.T) {
	cred := &stubCredential{err: errors.New("imds unreachable")}
	conn := &stubReauthenticator{}
	initial := &domainCacheToken.Token{Value: "old", ExpiresOn: tokenNow.Add(10 * time.Second)}
	svc := newCacheTokenService(cred, conn, "app-id", initial, nil, fixedClock)

	err := svc.EnsureFresh(context.Background())

	var refreshErr pkgError.TokenRefreshError
	require.ErrorAs(t, err, &refreshErr)
	var authErr pkgError.AuthFailureError
	assert.ErrorAs(t, err, &authErr)
	assert.Empty(t, conn.passwords)
	assert.Equal(t, *initial, *svc.Snapshot())
}

func TestCacheToken_EmptyTokenReusesCurrentValue(t *testing.T) {
	cred := &stubCredential{token: azcore.AccessToken{}}
	conn := &stubReauthenticator{}
	initial := &domainCacheToken.Token{Value: "old", ExpiresOn: tokenNow.Add(10 * time.Second)}
	svc := newCacheTokenService(cred, conn, "app-id", initial, nil, fixedClock)

	require.NoError(t, svc.EnsureFresh(context.Background()))

	assert.Equal(t, []string{"old"}, conn.passwords)
	assert.Equal(t, *initial, *svc.Snapshot())
}

func TestCacheToken_AuthFailureKeepsToken(t *testing.T) {
	cred := &stubCredential{token: azcore.AccessToken{Token: "new", ExpiresOn: tokenNow.Add(time.Hour)}}
	conn := &stubReauthenticator{err: errors.New("WRONGPASS")}
	initial := &domainCacheToken.Token{Value: "old", ExpiresOn: tokenNow.Add(10 * time.Second)}
	svc := newCacheTokenService(cred, conn, "app-id", initial, nil, fixedClock)

	err := svc.EnsureFresh(context.Background())

	var refreshErr pkgError.TokenRefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, 503, refreshErr.StatusCode())
	assert.Equal(t, *initial, *svc.Snapshot())
	assert.Equal(t, domainCacheToken.StateExpiring, svc.State())
}

func TestCacheToken_UnsetIsNoop(t *testing.T) {
	svc := newCacheTokenService(nil, nil, "", nil, nil, fixedClock)

	require.NoError(t, svc.EnsureFresh(context.Background()))
	assert.Equal(t, domainCacheToken.StateUnset, svc.State())
	assert.Nil(t, svc.Snapshot())
}
