package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/sirupsen/logrus"
)

// VaultScope is the audience for Key Vault data-plane tokens.
const VaultScope = "https://vault.azure.net/.default"

// SecretGetter is the subset of *azsecrets.Client the resolver needs.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// SecretClientFactory opens a secret client for a vault URL.
type SecretClientFactory func(vaultURL string, cred azcore.TokenCredential) (SecretGetter, error)

func defaultSecretClientFactory(vaultURL string, cred azcore.TokenCredential) (SecretGetter, error) {
	return azsecrets.NewClient(vaultURL, cred, nil)
}

type SecretResolver struct {
	cred      azcore.TokenCredential
	newClient SecretClientFactory
}

func NewSecretResolver(cred azcore.TokenCredential, factory SecretClientFactory) *SecretResolver {
	if factory == nil {
		factory = defaultSecretClientFactory
	}
	return &SecretResolver{cred: cred, newClient: factory}
}

// Resolve reads the latest version of secretName from vaultName.
// It fails with AuthFailureError when the credential cannot mint a vault
// token and with SecretNotFoundError when the vault has no value.
func (r *SecretResolver) Resolve(ctx context.Context, vaultName, secretName string) (string, error) {
	if _, err := r.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{VaultScope}}); err != nil {
		return "", pkgError.AuthFailureError{Scope: VaultScope, Err: err}
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net", vaultName)
	client, err := r.newClient(vaultURL, r.cred)
	if err != nil {
		return "", fmt.Errorf("failed to create secret client for %s: %w", vaultURL, err)
	}

	resp, err := client.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			switch respErr.StatusCode {
			case http.StatusNotFound:
				return "", pkgError.SecretNotFoundError{Vault: vaultName, Secret: secretName, Err: err}
			case http.StatusUnauthorized, http.StatusForbidden:
				return "", pkgError.AuthFailureError{Scope: VaultScope, Err: err}
			}
		}
		return "", fmt.Errorf("failed to read secret %q: %w", secretName, err)
	}
	if resp.Value == nil || *resp.Value == "" {
		return "", pkgError.SecretNotFoundError{Vault: vaultName, Secret: secretName}
	}

	logrus.WithField("vault", vaultName).Infof("[VAULT] Resolved secret %s", secretName)
	return *resp.Value, nil
}
