package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	domainCacheToken "github.com/AzielCF/az-chat/domains/cachetoken"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/AzielCF/az-chat/pkg/metrics"
	"github.com/sirupsen/logrus"
)

type cacheTokenService struct {
	mu sync.Mutex

	cred     azcore.TokenCredential
	conn     domainCacheToken.IReauthenticator
	username string
	token    *domainCacheToken.Token
	now      func() time.Time
	metrics  *metrics.Collector
}

// NewCacheTokenService guards the bearer token the cache connection was
// opened with. A nil initial token means the connection uses a static
// password and EnsureFresh never does anything.
func NewCacheTokenService(cred azcore.TokenCredential, conn domainCacheToken.IReauthenticator, username string, initial *domainCacheToken.Token, collector *metrics.Collector) domainCacheToken.ICacheTokenUsecase {
	return newCacheTokenService(cred, conn, username, initial, collector, time.Now)
}

func newCacheTokenService(cred azcore.TokenCredential, conn domainCacheToken.IReauthenticator, username string, initial *domainCacheToken.Token, collector *metrics.Collector, now func() time.Time) *cacheTokenService {
	var token *domainCacheToken.Token
	if initial != nil {
		copied := *initial
		token = &copied
	}
	return &cacheTokenService{
		cred:     cred,
		conn:     conn,
		username: username,
		token:    token,
		now:      now,
		metrics:  collector,
	}
}

func (s *cacheTokenService) EnsureFresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.token.NeedsRefresh(s.now()) {
		return nil
	}

	logrus.Debugf("[CACHE_TOKEN] Token %s, refreshing", s.token.StateAt(s.now()))

	fresh, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{domainCacheToken.Scope}})
	if err != nil {
		return s.refreshFailed(pkgError.AuthFailureError{Scope: domainCacheToken.Scope, Err: err})
	}

	value := fresh.Token
	if value == "" {
		logrus.Warn("[CACHE_TOKEN] Credential returned an empty token, re-authenticating with the current one")
		value = s.token.Value
	}

	if err := s.conn.Reauthenticate(ctx, s.username, value); err != nil {
		return s.refreshFailed(err)
	}

	s.token.Value = value
	if !fresh.ExpiresOn.IsZero() {
		s.token.ExpiresOn = fresh.ExpiresOn
	}
	s.metrics.RecordTokenRefresh(nil)
	logrus.Infof("[CACHE_TOKEN] Token refreshed, expires at %s", s.token.ExpiresOn.Format(time.RFC3339))
	return nil
}

func (s *cacheTokenService) refreshFailed(err error) error {
	s.metrics.RecordTokenRefresh(err)
	logrus.WithError(err).Error("[CACHE_TOKEN] Token refresh failed")
	return pkgError.TokenRefreshError{Err: err}
}

func (s *cacheTokenService) State() domainCacheToken.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token.StateAt(s.now())
}

func (s *cacheTokenService) Snapshot() *domainCacheToken.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil
	}
	copied := *s.token
	return &copied
}
