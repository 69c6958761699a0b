package valkey

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/AzielCF/az-chat/domains/cachetoken"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/sirupsen/logrus"
)

// Connect opens the shared cache connection. With a credential the
// connection authenticates as cfg.Username with a bearer token for
// cachetoken.Scope, and the token is returned so it can be kept fresh.
// Without one it uses cfg.Password and the returned token is nil.
func Connect(ctx context.Context, cfg Config, cred azcore.TokenCredential) (*Client, *cachetoken.Token, error) {
	if cred == nil {
		logrus.Infof("[CACHE] Connecting to %s with username and password", cfg.Address)
		client, err := NewClient(cfg)
		return client, nil, err
	}

	logrus.Infof("[CACHE] Connecting to %s with token credential", cfg.Address)
	access, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{cachetoken.Scope}})
	if err != nil {
		return nil, nil, pkgError.AuthFailureError{Scope: cachetoken.Scope, Err: err}
	}
	cfg.Password = access.Token

	client, err := NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	return client, &cachetoken.Token{Value: access.Token, ExpiresOn: access.ExpiresOn}, nil
}
