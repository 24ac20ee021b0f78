package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/repair-sla-service/internal/config"
	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/events"
	"github.com/spec-kit/repair-sla-service/internal/observability"
	"github.com/spec-kit/repair-sla-service/internal/repository"
	"github.com/spec-kit/repair-sla-service/internal/sla"
)

// ErrShopListUnavailable aborts a run: without the shop list nothing can be swept.
var ErrShopListUnavailable = errors.New("shop list unavailable")

// RunResult summarizes one scheduler run.
type RunResult struct {
	RunID              string
	ShopsChecked       int
	ShopsFailed        int
	CasesChecked       int
	CasesFailed        int
	CasesSkipped       int
	AlertsCreated      int
	AlertsDeduplicated int
	StartedAt          time.Time
	Duration           time.Duration
}

// Partial reports whether any shop or case was not fully evaluated.
func (r RunResult) Partial() bool {
	return r.ShopsFailed > 0 || r.CasesFailed > 0 || r.CasesSkipped > 0
}

type runCounters struct {
	shopsChecked       atomic.Int64
	shopsFailed        atomic.Int64
	casesChecked       atomic.Int64
	casesFailed        atomic.Int64
	casesSkipped       atomic.Int64
	alertsCreated      atomic.Int64
	alertsDeduplicated atomic.Int64
}

// AlertSchedulerDependencies bundles collaborators.
type AlertSchedulerDependencies struct {
	Shops         repository.ShopRepository
	Cases         repository.RepairCaseRepository
	Registry      *RegistryService
	Notifications repository.NotificationRepository
	Claims        repository.AlertClaimRepository
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Clock         func() time.Time
}

// AlertScheduler sweeps every alert-enabled shop and writes deduplicated SLA
// alerts. It keeps no state between runs, so overlapping runs are safe.
type AlertScheduler struct {
	shops         repository.ShopRepository
	cases         repository.RepairCaseRepository
	registry      *RegistryService
	notifications repository.NotificationRepository
	claims        repository.AlertClaimRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	clock         func() time.Time

	shopWorkers int
	caseWorkers int
	runTimeout  time.Duration
	claimTTL    time.Duration
}

// NewAlertScheduler creates the scheduler.
func NewAlertScheduler(cfg config.AlertConfig, deps AlertSchedulerDependencies) *AlertScheduler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	shopWorkers := cfg.ShopWorkers
	if shopWorkers <= 0 {
		shopWorkers = 1
	}
	caseWorkers := cfg.CaseWorkers
	if caseWorkers <= 0 {
		caseWorkers = 1
	}
	return &AlertScheduler{
		shops:         deps.Shops,
		cases:         deps.Cases,
		registry:      deps.Registry,
		notifications: deps.Notifications,
		claims:        deps.Claims,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger.Named("alert_scheduler"),
		clock:         clock,
		shopWorkers:   shopWorkers,
		caseWorkers:   caseWorkers,
		runTimeout:    cfg.RunTimeout(),
		claimTTL:      cfg.ClaimTTL(),
	}
}

// Run performs one sweep. Only a failure to list shops is returned as an
// error; every other failure is logged and contained to its shop or case.
func (s *AlertScheduler) Run(ctx context.Context) (RunResult, error) {
	begin := time.Now()
	started := s.clock()
	result := RunResult{RunID: uuid.NewString(), StartedAt: started}
	logger := s.logger.With(zap.String("run_id", result.RunID))

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	shops, err := s.shops.ListAlertEnabled(ctx)
	if err != nil {
		result.Duration = time.Since(begin)
		s.metrics.RecordRun("failure", 0, result.Duration)
		logger.Error("sla alert run aborted", zap.Error(err))
		return result, fmt.Errorf("%w: %w", ErrShopListUnavailable, err)
	}

	now := started.UTC()
	var counters runCounters
	g := new(errgroup.Group)
	g.SetLimit(s.shopWorkers)
	for _, shop := range shops {
		shop := shop
		g.Go(func() error {
			s.processShop(ctx, logger, shop, now, &counters)
			return nil
		})
	}
	_ = g.Wait()

	result.ShopsChecked = int(counters.shopsChecked.Load())
	result.ShopsFailed = int(counters.shopsFailed.Load())
	result.CasesChecked = int(counters.casesChecked.Load())
	result.CasesFailed = int(counters.casesFailed.Load())
	result.CasesSkipped = int(counters.casesSkipped.Load())
	result.AlertsCreated = int(counters.alertsCreated.Load())
	result.AlertsDeduplicated = int(counters.alertsDeduplicated.Load())
	result.Duration = time.Since(begin)

	outcome := "success"
	if result.Partial() {
		outcome = "partial"
	}
	s.metrics.RecordRun(outcome, result.ShopsChecked, result.Duration)
	logger.Info("sla alert run finished",
		zap.Int("shops_checked", result.ShopsChecked),
		zap.Int("shops_failed", result.ShopsFailed),
		zap.Int("cases_checked", result.CasesChecked),
		zap.Int("cases_failed", result.CasesFailed),
		zap.Int("cases_skipped", result.CasesSkipped),
		zap.Int("alerts_created", result.AlertsCreated),
		zap.Int("alerts_deduplicated", result.AlertsDeduplicated),
		zap.Duration("duration", result.Duration),
	)
	s.publish(ctx, logger, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLARunCompleted,
		Timestamp: time.Now(),
		Payload: events.SLARunCompletedPayload{
			RunID:         result.RunID,
			ShopsChecked:  result.ShopsChecked,
			ShopsFailed:   result.ShopsFailed,
			CasesFailed:   result.CasesFailed,
			CasesSkipped:  result.CasesSkipped,
			AlertsCreated: result.AlertsCreated,
			Duration:      result.Duration,
		},
	})
	return result, nil
}

func (s *AlertScheduler) processShop(ctx context.Context, logger *zap.Logger, shop domain.Shop, now time.Time, counters *runCounters) {
	counters.shopsChecked.Add(1)
	logger = logger.With(zap.String("shop_id", shop.ID))

	snap, err := s.registry.LoadSnapshot(ctx, shop.ID)
	if err != nil {
		counters.shopsFailed.Add(1)
		s.metrics.RecordShopFailure("load_registry")
		logger.Warn("skipping shop: registry unavailable", zap.Error(err))
		return
	}

	cases, err := s.cases.ListActive(ctx, shop.ID, snap.ExcludedStatuses())
	if err != nil {
		counters.shopsFailed.Add(1)
		s.metrics.RecordShopFailure("list_cases")
		logger.Warn("skipping shop: cases unavailable", zap.Error(err))
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.caseWorkers)
	for _, c := range cases {
		c := c
		g.Go(func() error {
			s.processCase(ctx, logger, snap, c, now, counters)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *AlertScheduler) processCase(ctx context.Context, logger *zap.Logger, snap Snapshot, c domain.RepairCase, now time.Time, counters *runCounters) {
	logger = logger.With(zap.String("case_id", c.ID))
	if err := ctx.Err(); err != nil {
		counters.casesSkipped.Add(1)
		logger.Warn("skipping case: run deadline reached", zap.Error(err))
		return
	}
	counters.casesChecked.Add(1)

	if c.CreatedAt.IsZero() {
		logger.Warn("skipping case without creation time")
		return
	}
	policy, configured := snap.PolicyFor(c.TypeKey)
	if !configured {
		logger.Debug("no policy for case type, using default",
			zap.String("type_key", string(c.TypeKey)),
			zap.Int("max_processing_days", policy.MaxProcessingDays))
	}
	class, known := snap.ClassOf(c.StatusKey)
	if !known {
		logger.Warn("case references unknown status, treating as active", zap.String("status_key", c.StatusKey))
	}

	assessment := sla.Assess(c, policy, class, now)
	if assessment.IsPaused || !sla.ShouldAlert(assessment, policy.AlertDays) {
		return
	}

	exists, err := s.notifications.ExistsUnreadOnDay(ctx, c.ID, domain.NotificationTypeSLAAlert, now)
	if err != nil {
		counters.casesFailed.Add(1)
		s.metrics.RecordCaseFailure("dedup_check")
		logger.Warn("skipping case: dedup check failed", zap.Error(err))
		return
	}
	if exists {
		counters.alertsDeduplicated.Add(1)
		s.metrics.RecordAlertDeduplicated()
		return
	}

	claimed := false
	if s.claims != nil {
		ok, err := s.claims.Claim(ctx, c.ID, now, s.claimTTL)
		switch {
		case err != nil:
			logger.Warn("alert claim unavailable, relying on store check", zap.Error(err))
		case !ok:
			counters.alertsDeduplicated.Add(1)
			s.metrics.RecordAlertDeduplicated()
			return
		default:
			claimed = true
		}
	}

	alert := sla.ComposeAlert(c.ID, assessment)
	notification := &domain.Notification{
		ShopID:    c.ShopID,
		CaseID:    c.ID,
		Type:      domain.NotificationTypeSLAAlert,
		Severity:  alert.Severity,
		Title:     alert.Title,
		Message:   alert.Message,
		Read:      false,
		CreatedAt: now,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		counters.casesFailed.Add(1)
		s.metrics.RecordCaseFailure("insert_alert")
		logger.Warn("failed to create sla alert", zap.Error(err))
		if claimed {
			if relErr := s.claims.Release(context.WithoutCancel(ctx), c.ID, now); relErr != nil {
				logger.Warn("failed to release alert claim", zap.Error(relErr))
			}
		}
		return
	}

	counters.alertsCreated.Add(1)
	s.metrics.RecordAlertCreated(string(alert.Severity))
	logger.Info("sla alert created",
		zap.String("notification_id", notification.ID),
		zap.String("severity", string(alert.Severity)),
		zap.Float64("remaining_days", assessment.RemainingDays))

	s.publish(ctx, logger, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLAAlertCreated,
		ShopID:    c.ShopID,
		CaseID:    c.ID,
		Timestamp: time.Now(),
		Payload: events.SLAAlertCreatedPayload{
			NotificationID: notification.ID,
			Severity:       alert.Severity,
			Title:          alert.Title,
			Message:        alert.Message,
			RemainingDays:  assessment.RemainingDays,
		},
	})
}

func (s *AlertScheduler) publish(ctx context.Context, logger *zap.Logger, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
