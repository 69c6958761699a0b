package cmd

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authInfra "github.com/AzielCF/az-chat/auth/infrastructure"
	"github.com/AzielCF/az-chat/ui/rest"
	"github.com/AzielCF/az-chat/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the chat page and the streaming chat API over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	initApp(context.Background())

	views, err := fs.Sub(EmbedViews, "views")
	if err != nil {
		logrus.Fatalf("[REST] Failed to load views: %v", err)
	}

	fiberConfig := fiber.Config{
		Views:                 html.NewFileSystem(http.FS(views), ".html"),
		Network:               "tcp",
		AppName:               "Az-Chat",
		DisableStartupMessage: cfg.App.Production,
		ServerHeader:          "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.EnableTrustedProxyCheck = true
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self';",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	// Every request observes the cache token before touching the session store.
	app.Use(middleware.CacheTokenGuard(cacheTokenUsecase))

	loginRequired := authInfra.LoginRequired(sessionStore)
	authInfra.NewAuthHandler(authService, sessionStore).Register(app)
	rest.InitRestIndex(app, loginRequired)
	rest.InitRestChat(app, chatUsecase, loginRequired)
	rest.InitRestHealth(app, healthUsecase)
	rest.InitRestMetrics(app, metricsCollector)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Errorf("[REST] Server stopped: %v", err)
	}
	StopApp()
}
