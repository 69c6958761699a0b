package infrastructure

import (
	"net/url"

	"github.com/AzielCF/az-chat/auth/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"
)

// LocalsUser is the fiber.Ctx locals key holding the signed-in domain.User.
const LocalsUser = "user"

// LoginRequired sends visitors without a session user to /login, remembering
// where they were headed.
func LoginRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			logrus.WithError(err).Warn("[AUTH] Could not load session")
			return redirectToLogin(c)
		}

		user, ok := loadUser(sess)
		if !ok {
			return redirectToLogin(c)
		}

		c.Locals(LocalsUser, user)
		return c.Next()
	}
}

// CurrentUser returns the user placed by LoginRequired.
func CurrentUser(c *fiber.Ctx) (domain.User, bool) {
	user, ok := c.Locals(LocalsUser).(domain.User)
	return user, ok
}

func redirectToLogin(c *fiber.Ctx) error {
	return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
}
