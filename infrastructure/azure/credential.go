package azure

import (
	"net/http"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/sirupsen/logrus"
)

// CredentialFactory builds the process credential. It receives the HTTP
// client the credential must use so Close can release its connections.
type CredentialFactory func(httpClient *http.Client) (azcore.TokenCredential, error)

// DefaultCredentialFactory uses the default Azure credential chain
// (environment, workload identity, managed identity, Azure CLI, azd).
func DefaultCredentialFactory(httpClient *http.Client) (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		ClientOptions: azcore.ClientOptions{Transport: httpClient},
	})
}

// CredentialProvider lazily creates one credential and hands out the same
// instance for the lifetime of the process.
// The caller is responsible for calling Close() at shutdown.
type CredentialProvider struct {
	factory    CredentialFactory
	httpClient *http.Client

	once sync.Once
	cred azcore.TokenCredential
	err  error
}

func NewCredentialProvider(factory CredentialFactory) *CredentialProvider {
	if factory == nil {
		factory = DefaultCredentialFactory
	}
	return &CredentialProvider{
		factory:    factory,
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
}

// Get returns the shared credential, constructing it on first use.
func (p *CredentialProvider) Get() (azcore.TokenCredential, error) {
	p.once.Do(func() {
		p.cred, p.err = p.factory(p.httpClient)
		if p.err != nil {
			logrus.WithError(p.err).Error("[AZURE] Failed to create credential")
			return
		}
		logrus.Debug("[AZURE] Credential created")
	})
	return p.cred, p.err
}

// Close releases the idle connections held by the credential's HTTP client.
func (p *CredentialProvider) Close() {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
}
