package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/sla"
	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

func newTestCaseSLAService(f *schedulerFixture) *CaseSLAService {
	registry := NewRegistryService(f.policies, f.statuses, []string{"delivered"})
	return NewCaseSLAService(f.cases, registry, func() time.Time { return f.now })
}

func TestCaseSLAService_ListShopAssessments(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	f.addCase("shop-a", "due-soon", "in_repair", caseCreated)
	f.addCase("shop-a", "fresh", "in_repair", jan4.Add(-2*time.Hour))
	f.addCase("shop-a", "done", "ready", caseCreated)

	items, err := newTestCaseSLAService(f).ListShopAssessments(context.Background(), "shop-a")
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]CaseAssessment{}
	for _, item := range items {
		byID[item.Case.ID] = item
	}
	assert.True(t, byID["due-soon"].ShouldWarn)
	assert.InDelta(t, 2.0, byID["due-soon"].Assessment.RemainingDays, 1e-9)
	assert.False(t, byID["fresh"].ShouldWarn)
}

func TestCaseSLAService_TimelineMatchesScheduler(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	f.addCase("shop-a", "case-1", "in_repair", caseCreated)
	f.now = time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	tl, err := newTestCaseSLAService(f).GetCaseTimeline(context.Background(), "shop-a", "case-1")
	require.NoError(t, err)

	assert.True(t, tl.Timeline.Assessment.IsOverdue)
	assert.Equal(t, 5, tl.Policy.MaxProcessingDays)
	require.Len(t, tl.Timeline.Markers, 5)
	assert.Equal(t, sla.MarkerOverdue, tl.Timeline.Markers[4].State)

	_, err = f.scheduler(nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AlertSeverityOverdue, f.notifications.forCase("case-1")[0].Severity)
}

func TestCaseSLAService_TimelineTerminalStatus(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	f.addCase("shop-a", "case-1", "ready", caseCreated)

	tl, err := newTestCaseSLAService(f).GetCaseTimeline(context.Background(), "shop-a", "case-1")
	require.NoError(t, err)

	assert.True(t, tl.Timeline.Assessment.IsPaused)
	last := tl.Timeline.Markers[len(tl.Timeline.Markers)-1]
	assert.Equal(t, sla.MarkerTerminal, last.State)
}

func TestCaseSLAService_TimelineNotFound(t *testing.T) {
	f := newSchedulerFixture("shop-a")

	_, err := newTestCaseSLAService(f).GetCaseTimeline(context.Background(), "shop-a", "missing")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
