package rest

import (
	"github.com/AzielCF/az-chat/domains/health"
	"github.com/AzielCF/az-chat/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	rest := Health{Service: service}
	app.Get("/healthz", rest.Check)

	return rest
}

func (handler *Health) Check(c *fiber.Ctx) error {
	records, err := handler.Service.CheckAll(c.UserContext())
	utils.PanicIfNeeded(err)

	res := utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "All checks passed",
		Results: records,
	}
	for _, record := range records {
		if record.Status == health.StatusError {
			res.Status = fiber.StatusServiceUnavailable
			res.Code = "UNHEALTHY"
			res.Message = "One or more checks failed"
			break
		}
	}
	return c.Status(res.Status).JSON(res)
}
