package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	pkgError "github.com/AzielCF/az-chat/pkg/error"
)

const (
	DefaultPort             = "50505"
	DefaultOpenAIAPIVersion = "2024-02-15-preview"
	LocalOpenAIAPIKey       = "no-key-required"
	LocalRedirectURI        = "http://localhost:50505/redirect"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App    AppConfig
	OpenAI OpenAIConfig
	Vault  VaultConfig
	Cache  CacheConfig
	Auth   AuthConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	Production     bool
	TrustedProxies []string
	SessionTTL     time.Duration
}

type OpenAIConfig struct {
	// LocalEndpoint points at an OpenAI-compatible server that needs no key.
	LocalEndpoint string
	Endpoint      string
	APIKey        string
	APIVersion    string
	Deployment    string
	// TrimChoices emits only choices[0] of each streamed event.
	TrimChoices bool
}

// UsesLocalEndpoint reports whether requests go to LocalEndpoint instead of Azure.
func (c OpenAIConfig) UsesLocalEndpoint() bool {
	return c.LocalEndpoint != ""
}

type VaultConfig struct {
	Name       string
	SecretName string
}

// URL returns the vault endpoint for Name.
func (c VaultConfig) URL() string {
	return fmt.Sprintf("https://%s.vault.azure.net", c.Name)
}

type CacheConfig struct {
	// TokenAuth selects bearer-token authentication (production).
	TokenAuth bool
	Host      string
	Port      int
	Username  string
	Password  string
	TLS       bool
	KeyPrefix string
}

// Address returns host:port for the cache connection.
func (c CacheConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type AuthConfig struct {
	Authority   string
	ClientID    string
	RedirectURI string
	// ClientSecret is resolved from the vault at startup and never read from the environment.
	ClientSecret string
}

// Global provides access to the loaded configuration globally (Migration Helper)
var Global *Config

// LoadConfig loads configuration from the environment (through viper) or defaults.
func LoadConfig() (*Config, error) {
	production := getEnvBool("RUNNING_IN_PRODUCTION", false)

	appCfg := AppConfig{
		Version:    "v1.0.0",
		Port:       getEnv("APP_PORT", DefaultPort),
		Debug:      getEnvBool("APP_DEBUG", false),
		Production: production,
		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	openaiCfg := OpenAIConfig{
		LocalEndpoint: getEnv("LOCAL_OPENAI_ENDPOINT", ""),
		Endpoint:      getEnv("AZURE_OPENAI_ENDPOINT", ""),
		APIKey:        getEnv("AZURE_OPENAI_KEY", ""),
		APIVersion:    getEnv("AZURE_OPENAI_API_VERSION", DefaultOpenAIAPIVersion),
		Deployment:    getEnv("AZURE_OPENAI_CHATGPT_DEPLOYMENT", ""),
		TrimChoices:   getEnvBool("CHAT_TRIM_CHOICES", false),
	}

	cacheCfg := CacheConfig{
		TokenAuth: production,
		Host:      getEnv("REDIS_HOST", "localhost"),
		Port:      getEnvInt("REDIS_PORT", 6379),
		Password:  getEnv("REDIS_PASSWORD", ""),
		KeyPrefix: getEnv("REDIS_KEY_PREFIX", "azchat:"),
	}
	if production {
		cacheCfg.Host = getEnv("AZURE_REDIS_HOST", "")
		cacheCfg.Port = 6380
		cacheCfg.Username = getEnv("AZURE_REDIS_USER", "")
		cacheCfg.Password = ""
		cacheCfg.TLS = true
	}

	cfg := &Config{
		App:    appCfg,
		OpenAI: openaiCfg,
		Vault: VaultConfig{
			Name:       getEnv("AZURE_KEY_VAULT_NAME", ""),
			SecretName: getEnv("AZURE_AUTH_CLIENT_SECRET_NAME", ""),
		},
		Cache: cacheCfg,
		Auth: AuthConfig{
			Authority:   getEnv("AZURE_AUTH_AUTHORITY", ""),
			ClientID:    getEnv("AZURE_AUTH_CLIENT_ID", ""),
			RedirectURI: redirectURI(production),
		},
	}

	Global = cfg
	return cfg, nil
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	var missing []string
	if !c.OpenAI.UsesLocalEndpoint() && c.OpenAI.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if c.OpenAI.Deployment == "" {
		missing = append(missing, "AZURE_OPENAI_CHATGPT_DEPLOYMENT")
	}
	if c.Vault.Name == "" {
		missing = append(missing, "AZURE_KEY_VAULT_NAME")
	}
	if c.Vault.SecretName == "" {
		missing = append(missing, "AZURE_AUTH_CLIENT_SECRET_NAME")
	}
	if c.Auth.Authority == "" {
		missing = append(missing, "AZURE_AUTH_AUTHORITY")
	}
	if c.Auth.ClientID == "" {
		missing = append(missing, "AZURE_AUTH_CLIENT_ID")
	}
	if c.Cache.TokenAuth {
		if c.Cache.Host == "" {
			missing = append(missing, "AZURE_REDIS_HOST")
		}
		if c.Cache.Username == "" {
			missing = append(missing, "AZURE_REDIS_USER")
		}
	}
	if c.Auth.RedirectURI == "" {
		missing = append(missing, "CONTAINER_APP_NAME", "CONTAINER_APP_ENV_DNS_SUFFIX")
	}
	if len(missing) > 0 {
		return pkgError.ConfigMissingError{Keys: missing}
	}
	return nil
}

func redirectURI(production bool) string {
	if !production {
		return LocalRedirectURI
	}
	name := getEnv("CONTAINER_APP_NAME", "")
	suffix := getEnv("CONTAINER_APP_ENV_DNS_SUFFIX", "")
	if name == "" || suffix == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.%s/redirect", name, suffix)
}
