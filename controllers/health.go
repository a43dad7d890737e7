package controllers

import (
	"schoolrecords_go/services"

	"github.com/gofiber/fiber/v2"
)

// HealthController serves the aggregated health report. The service is
// injected once at startup; there is no fallback construction here.
type HealthController struct {
	service *services.HealthService
}

func NewHealthController(service *services.HealthService) *HealthController {
	return &HealthController{service: service}
}

func (hc *HealthController) GetHealthStatus(c *fiber.Ctx) error {
	report := hc.service.GetHealthReport()
	return c.Status(hc.service.HTTPStatusForOverall(report.Status)).JSON(report)
}
