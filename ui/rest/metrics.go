package rest

import (
	"github.com/AzielCF/az-chat/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func InitRestMetrics(app fiber.Router, collector *metrics.Collector) {
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
}
