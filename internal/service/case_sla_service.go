package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/repository"
	"github.com/spec-kit/repair-sla-service/internal/sla"
	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

// CaseAssessment pairs a case with its current deadline state.
type CaseAssessment struct {
	Case       domain.RepairCase
	Policy     domain.SLAPolicy
	Assessment sla.Assessment
	ShouldWarn bool
}

// CaseTimeline is the rendered timeline of one case.
type CaseTimeline struct {
	Case     domain.RepairCase
	Policy   domain.SLAPolicy
	Timeline sla.Timeline
}

// CaseSLAService serves on-demand deadline views for the UI using the same
// calculator as the alert scheduler.
type CaseSLAService struct {
	cases    repository.RepairCaseRepository
	registry *RegistryService
	clock    func() time.Time
}

// NewCaseSLAService creates the service.
func NewCaseSLAService(cases repository.RepairCaseRepository, registry *RegistryService, clock func() time.Time) *CaseSLAService {
	if clock == nil {
		clock = time.Now
	}
	return &CaseSLAService{cases: cases, registry: registry, clock: clock}
}

// ListShopAssessments evaluates every active case of a shop.
func (s *CaseSLAService) ListShopAssessments(ctx context.Context, shopID string) ([]CaseAssessment, error) {
	snap, err := s.registry.LoadSnapshot(ctx, shopID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	cases, err := s.cases.ListActive(ctx, shopID, snap.ExcludedStatuses())
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.clock().UTC()
	result := make([]CaseAssessment, 0, len(cases))
	for _, c := range cases {
		policy, _ := snap.PolicyFor(c.TypeKey)
		class, _ := snap.ClassOf(c.StatusKey)
		a := sla.Assess(c, policy, class, now)
		result = append(result, CaseAssessment{
			Case:       c,
			Policy:     policy,
			Assessment: a,
			ShouldWarn: sla.ShouldAlert(a, policy.AlertDays),
		})
	}
	return result, nil
}

// GetCaseTimeline renders the day markers for one case.
func (s *CaseSLAService) GetCaseTimeline(ctx context.Context, shopID, caseID string) (*CaseTimeline, error) {
	c, err := s.cases.GetByID(ctx, shopID, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}
	snap, err := s.registry.LoadForCase(ctx, *c)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	policy, _ := snap.PolicyFor(c.TypeKey)
	class, _ := snap.ClassOf(c.StatusKey)
	a := sla.Assess(*c, policy, class, s.clock().UTC())
	return &CaseTimeline{Case: *c, Policy: policy, Timeline: sla.RenderTimeline(a)}, nil
}
