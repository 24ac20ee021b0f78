package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-sla-service/internal/api/dto"
	"github.com/spec-kit/repair-sla-service/internal/service"
)

// AlertRunner runs one SLA alert sweep.
type AlertRunner interface {
	Run(ctx context.Context) (service.RunResult, error)
}

// AlertsHandler exposes the scheduler to external job infrastructure.
type AlertsHandler struct {
	runner AlertRunner
}

// NewAlertsHandler constructs handler.
func NewAlertsHandler(runner AlertRunner) *AlertsHandler {
	return &AlertsHandler{runner: runner}
}

// Run POST /internal/jobs/sla-alerts. The sweep is detached from the HTTP
// request deadline and bounded by the scheduler's own run timeout.
func (h *AlertsHandler) Run(c *fiber.Ctx) error {
	result, err := h.runner.Run(context.WithoutCancel(c.UserContext()))
	if err != nil {
		if errors.Is(err, service.ErrShopListUnavailable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}
	return c.JSON(dto.RunAlertsResponse{
		Success:            true,
		Partial:            result.Partial(),
		RunID:              result.RunID,
		ShopsChecked:       result.ShopsChecked,
		ShopsFailed:        result.ShopsFailed,
		CasesChecked:       result.CasesChecked,
		CasesFailed:        result.CasesFailed,
		CasesSkipped:       result.CasesSkipped,
		AlertsCreated:      result.AlertsCreated,
		AlertsDeduplicated: result.AlertsDeduplicated,
		DurationMS:         result.Duration.Milliseconds(),
	})
}
