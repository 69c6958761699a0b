package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscoveryServer(t *testing.T, endSession bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tenant/v2.0/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		doc := map[string]any{
			"issuer":                 srv.URL + "/tenant/v2.0",
			"authorization_endpoint": srv.URL + "/tenant/oauth2/v2.0/authorize",
			"token_endpoint":         srv.URL + "/tenant/oauth2/v2.0/token",
			"jwks_uri":               srv.URL + "/tenant/discovery/v2.0/keys",
		}
		if endSession {
			doc["end_session_endpoint"] = srv.URL + "/tenant/oauth2/v2.0/logout"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOIDCProvider_AuthCodeURL(t *testing.T) {
	srv := newDiscoveryServer(t, true)
	provider, err := NewOIDCProvider(context.Background(), OIDCConfig{
		Authority:   srv.URL + "/tenant/",
		ClientID:    "client-1",
		RedirectURI: "http://localhost:50505/redirect",
	})
	require.NoError(t, err)

	authURL, err := url.Parse(provider.AuthCodeURL("st", "no", "verifier-verifier-verifier-verifier-verifier"))
	require.NoError(t, err)

	q := authURL.Query()
	assert.Equal(t, "/tenant/oauth2/v2.0/authorize", authURL.Path)
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "no", q.Get("nonce"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "http://localhost:50505/redirect", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestOIDCProvider_LogoutURL(t *testing.T) {
	srv := newDiscoveryServer(t, true)
	provider, err := NewOIDCProvider(context.Background(), OIDCConfig{Authority: srv.URL + "/tenant", ClientID: "c"})
	require.NoError(t, err)

	logout, err := url.Parse(provider.LogoutURL("http://localhost:50505/"))
	require.NoError(t, err)
	assert.Equal(t, "/tenant/oauth2/v2.0/logout", logout.Path)
	assert.Equal(t, "http://localhost:50505/", logout.Query().Get("post_logout_redirect_uri"))

	plain := newDiscoveryServer(t, false)
	provider, err = NewOIDCProvider(context.Background(), OIDCConfig{Authority: plain.URL + "/tenant", ClientID: "c"})
	require.NoError(t, err)
	assert.Empty(t, provider.LogoutURL("http://localhost:50505/"))
}

func TestOIDCProvider_DiscoveryFailure(t *testing.T) {
	srv := newDiscoveryServer(t, true)
	_, err := NewOIDCProvider(context.Background(), OIDCConfig{Authority: srv.URL + "/other", ClientID: "c"})
	assert.Error(t, err)
}
