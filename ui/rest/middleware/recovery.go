package middleware

import (
	"errors"
	"fmt"
	"net/http"

	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/AzielCF/az-chat/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			res := utils.ResponseData{
				Status:  http.StatusInternalServerError,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", recovered),
			}

			var generic pkgError.GenericError
			if err, ok := recovered.(error); ok && errors.As(err, &generic) {
				res = utils.ErrorResponse(generic)
			}

			if res.Status >= http.StatusInternalServerError {
				logrus.WithField("path", ctx.Path()).Errorf("[REST] Panic recovered: %v", recovered)
			} else {
				logrus.WithField("path", ctx.Path()).Debugf("[REST] Request rejected: %v", recovered)
			}

			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
