package middleware

import (
	"errors"

	domainCacheToken "github.com/AzielCF/az-chat/domains/cachetoken"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/AzielCF/az-chat/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// CacheTokenGuard keeps the cache bearer token fresh before the request
// touches the session store. A failed refresh ends the request.
func CacheTokenGuard(tokens domainCacheToken.ICacheTokenUsecase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := tokens.EnsureFresh(c.UserContext()); err != nil {
			var generic pkgError.GenericError
			if !errors.As(err, &generic) {
				generic = pkgError.TokenRefreshError{Err: err}
			}
			res := utils.ErrorResponse(generic)
			return c.Status(res.Status).JSON(res)
		}
		return c.Next()
	}
}
