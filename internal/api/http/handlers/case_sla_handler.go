package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-sla-service/internal/api/dto"
	"github.com/spec-kit/repair-sla-service/internal/service"
)

// CaseSLAReader computes deadline views on demand.
type CaseSLAReader interface {
	ListShopAssessments(ctx context.Context, shopID string) ([]service.CaseAssessment, error)
	GetCaseTimeline(ctx context.Context, shopID, caseID string) (*service.CaseTimeline, error)
}

// CaseSLAHandler serves progress indicators and timelines.
type CaseSLAHandler struct {
	service CaseSLAReader
}

// NewCaseSLAHandler constructs handler.
func NewCaseSLAHandler(svc CaseSLAReader) *CaseSLAHandler {
	return &CaseSLAHandler{service: svc}
}

// ListAssessments GET /shops/:shopID/cases/sla.
func (h *CaseSLAHandler) ListAssessments(c *fiber.Ctx) error {
	shopID, err := uuidParam(c, "shopID", "shop")
	if err != nil {
		return err
	}
	items, err := h.service.ListShopAssessments(c.UserContext(), shopID)
	if err != nil {
		return err
	}
	resp := make([]dto.CaseSLAResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.CaseSLAResponse{
			CaseID:     item.Case.ID,
			TypeKey:    item.Case.TypeKey,
			StatusKey:  item.Case.StatusKey,
			CreatedAt:  item.Case.CreatedAt,
			AlertDays:  item.Policy.AlertDays,
			ShouldWarn: item.ShouldWarn,
			Assessment: dto.NewAssessmentResponse(item.Assessment),
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Timeline GET /shops/:shopID/cases/:caseID/timeline.
func (h *CaseSLAHandler) Timeline(c *fiber.Ctx) error {
	shopID, err := uuidParam(c, "shopID", "shop")
	if err != nil {
		return err
	}
	caseID, err := uuidParam(c, "caseID", "case")
	if err != nil {
		return err
	}
	tl, err := h.service.GetCaseTimeline(c.UserContext(), shopID, caseID)
	if err != nil {
		return err
	}
	markers := make([]dto.MarkerResponse, 0, len(tl.Timeline.Markers))
	for _, m := range tl.Timeline.Markers {
		markers = append(markers, dto.MarkerResponse{Day: m.Day, State: m.State})
	}
	return c.JSON(fiber.Map{"data": dto.TimelineResponse{
		CaseID:     tl.Case.ID,
		Markers:    markers,
		Assessment: dto.NewAssessmentResponse(tl.Timeline.Assessment),
	}})
}
