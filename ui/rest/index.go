package rest

import (
	authInfra "github.com/AzielCF/az-chat/auth/infrastructure"
	"github.com/gofiber/fiber/v2"
)

type Index struct{}

func InitRestIndex(app fiber.Router, loginRequired fiber.Handler) Index {
	rest := Index{}
	app.Get("/", loginRequired, rest.Home)

	return rest
}

func (handler *Index) Home(c *fiber.Ctx) error {
	user, _ := authInfra.CurrentUser(c)
	return c.Render("index", fiber.Map{
		"Name":  user.DisplayName(),
		"Email": user.Email,
	})
}
