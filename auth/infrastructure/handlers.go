package infrastructure

import (
	"github.com/AzielCF/az-chat/auth/application"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/AzielCF/az-chat/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *application.AuthService
	store       *session.Store
}

func NewAuthHandler(service *application.AuthService, store *session.Store) *AuthHandler {
	return &AuthHandler{authService: service, store: store}
}

// Register mounts /login, /redirect and /logout.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Get("/login", h.Login)
	router.Get("/redirect", h.Redirect)
	router.Get("/logout", h.Logout)
}

// Login starts the authorization code flow.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	utils.PanicIfNeeded(err)

	attempt, authURL := h.authService.BeginLogin(c.Query("next"))
	storeAttempt(sess, attempt)
	utils.PanicIfNeeded(sess.Save())

	return c.Redirect(authURL, fiber.StatusFound)
}

// Redirect is the provider callback.
func (h *AuthHandler) Redirect(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	utils.PanicIfNeeded(err)

	if providerErr := c.Query("error"); providerErr != "" {
		logrus.WithField("error", providerErr).Warn("[AUTH] Provider rejected login")
		utils.PanicIfNeeded(pkgError.UnauthorizedError(providerErr + ": " + c.Query("error_description")))
	}

	attempt := takeAttempt(sess)
	user, err := h.authService.CompleteLogin(c.UserContext(), attempt, c.Query("state"), c.Query("code"))
	if err != nil {
		utils.PanicIfNeeded(sess.Save())
		logrus.WithError(err).Warn("[AUTH] Login callback rejected")
		utils.PanicIfNeeded(err)
	}

	utils.PanicIfNeeded(sess.Regenerate())
	storeUser(sess, *user)
	utils.PanicIfNeeded(sess.Save())

	logrus.WithField("user", user.ID).Info("[AUTH] User signed in")
	return c.Redirect(attempt.Next, fiber.StatusFound)
}

// Logout drops the session and signs out at the provider when it supports it.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	utils.PanicIfNeeded(err)
	utils.PanicIfNeeded(sess.Destroy())

	if target := h.authService.LogoutURL(c.BaseURL() + "/"); target != "" {
		return c.Redirect(target, fiber.StatusFound)
	}
	return c.Redirect("/", fiber.StatusFound)
}
