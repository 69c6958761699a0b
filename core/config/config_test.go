package config

import (
	"testing"
	"time"

	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	viper.AutomaticEnv()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Local(t *testing.T) {
	setEnv(t, map[string]string{
		"RUNNING_IN_PRODUCTION":           "",
		"LOCAL_OPENAI_ENDPOINT":           "http://localhost:8080/v1",
		"AZURE_OPENAI_CHATGPT_DEPLOYMENT": "gpt-4o",
		"AZURE_KEY_VAULT_NAME":            "kv-chat",
		"AZURE_AUTH_CLIENT_SECRET_NAME":   "auth-secret",
		"AZURE_AUTH_AUTHORITY":            "https://login.microsoftonline.com/tenant",
		"AZURE_AUTH_CLIENT_ID":            "client",
		"REDIS_HOST":                      "",
		"REDIS_PORT":                      "",
		"REDIS_PASSWORD":                  "pw",
		"APP_PORT":                        "",
		"CHAT_TRIM_CHOICES":               "",
		"SESSION_TTL_HOURS":               "2",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.False(t, cfg.App.Production)
	assert.Equal(t, DefaultPort, cfg.App.Port)
	assert.Equal(t, 2*time.Hour, cfg.App.SessionTTL)
	assert.True(t, cfg.OpenAI.UsesLocalEndpoint())
	assert.Equal(t, DefaultOpenAIAPIVersion, cfg.OpenAI.APIVersion)
	assert.False(t, cfg.OpenAI.TrimChoices)
	assert.False(t, cfg.Cache.TokenAuth)
	assert.Equal(t, "localhost:6379", cfg.Cache.Address())
	assert.Equal(t, "pw", cfg.Cache.Password)
	assert.Equal(t, LocalRedirectURI, cfg.Auth.RedirectURI)
	assert.Equal(t, "https://kv-chat.vault.azure.net", cfg.Vault.URL())
	assert.Same(t, cfg, Global)
}

func TestLoadConfig_Production(t *testing.T) {
	setEnv(t, map[string]string{
		"RUNNING_IN_PRODUCTION":           "true",
		"LOCAL_OPENAI_ENDPOINT":           "",
		"AZURE_OPENAI_ENDPOINT":           "https://oai.openai.azure.com",
		"AZURE_OPENAI_CHATGPT_DEPLOYMENT": "gpt-4o",
		"AZURE_KEY_VAULT_NAME":            "kv-chat",
		"AZURE_AUTH_CLIENT_SECRET_NAME":   "auth-secret",
		"AZURE_AUTH_AUTHORITY":            "https://login.microsoftonline.com/tenant",
		"AZURE_AUTH_CLIENT_ID":            "client",
		"AZURE_REDIS_HOST":                "chat.redis.cache.windows.net",
		"AZURE_REDIS_USER":                "principal-id",
		"REDIS_PASSWORD":                  "ignored",
		"CONTAINER_APP_NAME":              "chat",
		"CONTAINER_APP_ENV_DNS_SUFFIX":    "happy.eastus.azurecontainerapps.io",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.App.Production)
	assert.True(t, cfg.Cache.TokenAuth)
	assert.True(t, cfg.Cache.TLS)
	assert.Equal(t, "chat.redis.cache.windows.net:6380", cfg.Cache.Address())
	assert.Empty(t, cfg.Cache.Password)
	assert.Equal(t, "https://chat.happy.eastus.azurecontainerapps.io/redirect", cfg.Auth.RedirectURI)
}

func TestValidate_ReportsMissingKeys(t *testing.T) {
	setEnv(t, map[string]string{
		"RUNNING_IN_PRODUCTION":           "1",
		"LOCAL_OPENAI_ENDPOINT":           "",
		"AZURE_OPENAI_ENDPOINT":           "",
		"AZURE_OPENAI_CHATGPT_DEPLOYMENT": "",
		"AZURE_KEY_VAULT_NAME":            "",
		"AZURE_AUTH_CLIENT_SECRET_NAME":   "",
		"AZURE_AUTH_AUTHORITY":            "",
		"AZURE_AUTH_CLIENT_ID":            "",
		"AZURE_REDIS_HOST":                "",
		"AZURE_REDIS_USER":                "",
		"CONTAINER_APP_NAME":              "",
		"CONTAINER_APP_ENV_DNS_SUFFIX":    "",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	var missing pkgError.ConfigMissingError
	require.ErrorAs(t, cfg.Validate(), &missing)
	assert.ElementsMatch(t, []string{
		"AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_CHATGPT_DEPLOYMENT",
		"AZURE_KEY_VAULT_NAME",
		"AZURE_AUTH_CLIENT_SECRET_NAME",
		"AZURE_AUTH_AUTHORITY",
		"AZURE_AUTH_CLIENT_ID",
		"AZURE_REDIS_HOST",
		"AZURE_REDIS_USER",
		"CONTAINER_APP_NAME",
		"CONTAINER_APP_ENV_DNS_SUFFIX",
	}, missing.Keys)
}
