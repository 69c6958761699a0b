package cmd

import (
	"context"
	"embed"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	authApp "github.com/AzielCF/az-chat/auth/application"
	authInfra "github.com/AzielCF/az-chat/auth/infrastructure"
	coreconfig "github.com/AzielCF/az-chat/core/config"
	domainCacheToken "github.com/AzielCF/az-chat/domains/cachetoken"
	domainChat "github.com/AzielCF/az-chat/domains/chat"
	domainHealth "github.com/AzielCF/az-chat/domains/health"
	"github.com/AzielCF/az-chat/infrastructure/azure"
	openaiInfra "github.com/AzielCF/az-chat/infrastructure/openai"
	"github.com/AzielCF/az-chat/infrastructure/valkey"
	"github.com/AzielCF/az-chat/pkg/metrics"
	"github.com/AzielCF/az-chat/pkg/utils"
	"github.com/AzielCF/az-chat/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	EmbedViews embed.FS

	cfg *coreconfig.Config

	// Infrastructure
	credentialProvider *azure.CredentialProvider
	cacheClient        *valkey.Client
	completionClient   *openaiInfra.Client
	metricsCollector   *metrics.Collector
	sessionStore       *session.Store

	// Usecase
	chatUsecase       domainChat.IChatUsecase
	cacheTokenUsecase domainCacheToken.ICacheTokenUsecase
	healthUsecase     domainHealth.IHealthUsecase
	authService       *authApp.AuthService
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-chat",
	Short: "Chat with an Azure OpenAI deployment behind Entra ID sign-in",
	Long: `Serves a signed-in chat page and streams completions from Azure OpenAI
(or a local OpenAI-compatible server) as newline-delimited JSON.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initLogging)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP(
		"port", "p",
		coreconfig.DefaultPort,
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().Bool(
		"trim-choices",
		false,
		"stream only the first choice of every completion event | example: --trim-choices=true",
	)

	_ = viper.BindPFlag("APP_PORT", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("APP_DEBUG", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("CHAT_TRIM_CHOICES", rootCmd.PersistentFlags().Lookup("trim-choices"))
}

// initEnvConfig loads configuration from flags and environment variables
func initEnvConfig() {
	var err error
	cfg, err = coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] Failed to load configuration: %v", err)
	}
}

func initLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	switch {
	case cfg.App.Debug:
		logrus.SetLevel(logrus.DebugLevel)
	case cfg.App.Production:
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.Debugf("[CONFIG] %v", coreconfig.GetAllSettings())
}

// initApp builds every shared object once, before the server accepts requests.
// Any failure here is fatal.
func initApp(ctx context.Context) {
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	// 1. Credential and vault
	credentialProvider = azure.NewCredentialProvider(nil)
	cred, err := credentialProvider.Get()
	if err != nil {
		logrus.Fatalf("[AZURE] Failed to create credential: %v", err)
	}

	secret, err := azure.NewSecretResolver(cred, nil).Resolve(ctx, cfg.Vault.Name, cfg.Vault.SecretName)
	if err != nil {
		logrus.Fatalf("[VAULT] Failed to resolve client secret: %v", err)
	}
	cfg.Auth.ClientSecret = secret
	logrus.Infof("[VAULT] Client secret %s loaded from %s", cfg.Vault.SecretName, cfg.Vault.URL())

	// 2. Cache connection, token guard and session store
	var cacheCred azcore.TokenCredential
	if cfg.Cache.TokenAuth {
		cacheCred = cred
	}
	var initialToken *domainCacheToken.Token
	cacheClient, initialToken, err = valkey.Connect(ctx, valkey.Config{
		Address:   cfg.Cache.Address(),
		Username:  cfg.Cache.Username,
		Password:  cfg.Cache.Password,
		TLS:       cfg.Cache.TLS,
		KeyPrefix: cfg.Cache.KeyPrefix,
	}, cacheCred)
	if err != nil {
		logrus.Fatalf("[CACHE] %v", err)
	}

	metricsCollector = metrics.NewCollector(nil)
	cacheTokenUsecase = usecase.NewCacheTokenService(cred, cacheClient, cfg.Cache.Username, initialToken, metricsCollector)

	sessionStore = session.New(session.Config{
		Storage:        valkey.NewSessionStorage(cacheClient),
		Expiration:     cfg.App.SessionTTL,
		CookieSecure:   cfg.App.Production,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	// 3. Completion client and chat
	completionClient = openaiInfra.NewClient(openaiInfra.Config{
		LocalEndpoint: cfg.OpenAI.LocalEndpoint,
		LocalAPIKey:   coreconfig.LocalOpenAIAPIKey,
		Endpoint:      cfg.OpenAI.Endpoint,
		APIKey:        cfg.OpenAI.APIKey,
		APIVersion:    cfg.OpenAI.APIVersion,
	}, cred)
	chatUsecase = usecase.NewChatService(completionClient, cfg.OpenAI.Deployment, cfg.OpenAI.TrimChoices, metricsCollector)
	healthUsecase = usecase.NewHealthService(cacheClient, cacheTokenUsecase, completionTarget(cfg.OpenAI))

	// 4. Sign-in
	provider, err := authInfra.NewOIDCProvider(ctx, authInfra.OIDCConfig{
		Authority:    cfg.Auth.Authority,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		RedirectURI:  cfg.Auth.RedirectURI,
	})
	if err != nil {
		logrus.Fatalf("[AUTH] %v", err)
	}
	authService = authApp.NewAuthService(provider)
}

func completionTarget(c coreconfig.OpenAIConfig) string {
	if c.UsesLocalEndpoint() {
		return "local:" + c.Deployment
	}
	return "azure:" + c.Deployment
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(embedViews embed.FS) {
	EmbedViews = embedViews
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp releases the completion client, the credential and the cache connection.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if completionClient != nil {
		completionClient.Close()
	}
	if credentialProvider != nil {
		credentialProvider.Close()
	}
	if cacheClient != nil {
		cacheClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
