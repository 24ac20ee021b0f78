package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/repair-sla-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-sla-service/internal/auth"
	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/observability"
	"github.com/spec-kit/repair-sla-service/internal/service"
	"github.com/spec-kit/repair-sla-service/internal/sla"
	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

const (
	shopA               = "5d0c7a52-3b8e-4c55-a1f4-0c1f3f0b6a11"
	shopB               = "9a4e2f10-7c6d-4b1e-8f3a-2d5b6c7e8f22"
	case1               = "c3f1a9e4-1d2b-4a6c-9e8f-7b5a4c3d2e33"
	caseMissing         = "00000000-0000-4000-8000-000000000404"
	notification1       = "e7d6c5b4-a392-4817-b6c5-d4e3f2a1b044"
	notificationMissing = "11111111-2222-4333-8444-555555555555"
)

type fakeRunner struct {
	result      service.RunResult
	err         error
	hadDeadline bool
}

func (f *fakeRunner) Run(ctx context.Context) (service.RunResult, error) {
	_, f.hadDeadline = ctx.Deadline()
	return f.result, f.err
}

type fakeCaseSLA struct {
	items    []service.CaseAssessment
	timeline *service.CaseTimeline
	calls    int
}

func (f *fakeCaseSLA) ListShopAssessments(ctx context.Context, shopID string) ([]service.CaseAssessment, error) {
	f.calls++
	return f.items, nil
}

func (f *fakeCaseSLA) GetCaseTimeline(ctx context.Context, shopID, caseID string) (*service.CaseTimeline, error) {
	f.calls++
	if f.timeline == nil || f.timeline.Case.ID != caseID {
		return nil, apperrors.NewNotFound("case", nil)
	}
	return f.timeline, nil
}

type fakeInbox struct {
	items    []domain.Notification
	lastList  service.InboxQuery
	marked    []string
	markCalls int
}

func (f *fakeInbox) List(ctx context.Context, shopID string, q service.InboxQuery) ([]domain.Notification, error) {
	f.lastList = q
	return f.items, nil
}

func (f *fakeInbox) MarkRead(ctx context.Context, shopID, notificationID string) error {
	f.markCalls++
	for _, n := range f.items {
		if n.ID == notificationID && n.ShopID == shopID {
			f.marked = append(f.marked, notificationID)
			return nil
		}
	}
	return apperrors.NewNotFound("notification", nil)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type testServer struct {
	app     *fiber.App
	secret  string
	runner  *fakeRunner
	caseSLA *fakeCaseSLA
	inbox   *fakeInbox
}

func newTestServer(t *testing.T, jobKeyHash string) *testServer {
	t.Helper()
	ts := &testServer{
		secret:  "test-secret",
		runner:  &fakeRunner{},
		caseSLA: &fakeCaseSLA{},
		inbox:   &fakeInbox{},
	}
	metrics := observability.NewMetrics()
	ts.app = fiber.New()
	RegisterMiddlewares(ts.app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(ts.app, RouteConfig{
		Health: handlers.NewHealthHandler("repair-sla-service", "test", map[string]handlers.Pinger{
			"postgres": fakePinger{},
		}),
		Alerts:         handlers.NewAlertsHandler(ts.runner),
		CaseSLA:        handlers.NewCaseSLAHandler(ts.caseSLA),
		Notifications:  handlers.NewNotificationsHandler(ts.inbox),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewTokenVerifier(ts.secret)),
		JobKeyHash:     jobKeyHash,
		Metrics:        metrics,
		MetricsPath:    "/metrics",
	})
	return ts
}

func (ts *testServer) token(t *testing.T, shopID string, role domain.Role) string {
	t.Helper()
	token, _, err := auth.IssueToken(ts.secret, auth.TokenRequest{
		Subject: "staff-1",
		ShopID:  shopID,
		Role:    role,
		TTL:     time.Hour,
	}, time.Now())
	require.NoError(t, err)
	return "Bearer " + token
}

func (ts *testServer) do(t *testing.T, method, path, authHeader string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestAlertTrigger_Success(t *testing.T) {
	ts := newTestServer(t, "")
	ts.runner.result = service.RunResult{RunID: "run-1", ShopsChecked: 3, AlertsCreated: 2}

	status, body := ts.do(t, "POST", "/internal/jobs/sla-alerts", "", nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["shops_checked"])
	assert.EqualValues(t, 2, body["alerts_created"])
	assert.Equal(t, false, body["partial"])
	assert.False(t, ts.runner.hadDeadline)
}

func TestAlertTrigger_ReportsContainedFailures(t *testing.T) {
	ts := newTestServer(t, "")
	ts.runner.result = service.RunResult{ShopsChecked: 2, CasesChecked: 5, CasesFailed: 1, CasesSkipped: 3}

	status, body := ts.do(t, "POST", "/internal/jobs/sla-alerts", "", nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["partial"])
	assert.EqualValues(t, 1, body["cases_failed"])
	assert.EqualValues(t, 3, body["cases_skipped"])
}

func TestAlertTrigger_SystemicFailure(t *testing.T) {
	ts := newTestServer(t, "")
	ts.runner.err = fmt.Errorf("%w: %w", service.ErrShopListUnavailable, errors.New("connection refused"))

	status, body := ts.do(t, "POST", "/internal/jobs/sla-alerts", "", nil)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body["error"], "shop list unavailable")
	assert.NotContains(t, body, "success")
}

func TestAlertTrigger_JobKey(t *testing.T) {
	hashed, err := auth.HashJobKey("cron-key", bcrypt.MinCost)
	require.NoError(t, err)
	ts := newTestServer(t, hashed)

	status, _ := ts.do(t, "POST", "/internal/jobs/sla-alerts", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ts.do(t, "POST", "/internal/jobs/sla-alerts", "", map[string]string{auth.JobKeyHeader: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ts.do(t, "POST", "/internal/jobs/sla-alerts", "", map[string]string{auth.JobKeyHeader: "cron-key"})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestShopRoutes_RequireMatchingShop(t *testing.T) {
	ts := newTestServer(t, "")

	status, _ := ts.do(t, "GET", "/shops/"+shopA+"/cases/sla", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := ts.do(t, "GET", "/shops/"+shopA+"/cases/sla", ts.token(t, shopB, domain.RoleStaff), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["code"])

	status, _ = ts.do(t, "GET", "/shops/"+shopA+"/cases/sla", ts.token(t, shopA, domain.RoleStaff), nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = ts.do(t, "GET", "/shops/"+shopA+"/cases/sla", ts.token(t, "", domain.RoleAdmin), nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestCaseSLA_ListAndTimeline(t *testing.T) {
	ts := newTestServer(t, "")
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := domain.RepairCase{ID: case1, ShopID: shopA, TypeKey: domain.CaseTypeRepair, StatusKey: "in_progress", CreatedAt: created}
	a := sla.Assess(c, domain.SLAPolicy{MaxProcessingDays: 7, AlertDays: 2}, domain.StatusClassActive, created.Add(6*24*time.Hour))
	ts.caseSLA.items = []service.CaseAssessment{{Case: c, Policy: domain.SLAPolicy{MaxProcessingDays: 7, AlertDays: 2}, Assessment: a, ShouldWarn: true}}
	ts.caseSLA.timeline = &service.CaseTimeline{Case: c, Timeline: sla.RenderTimeline(a)}
	token := ts.token(t, shopA, domain.RoleOwner)

	status, body := ts.do(t, "GET", "/shops/"+shopA+"/cases/sla", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, case1, item["case_id"])
	assert.Equal(t, true, item["should_warn"])
	assert.EqualValues(t, 1, item["assessment"].(map[string]any)["whole_remaining_days"])

	status, body = ts.do(t, "GET", "/shops/"+shopA+"/cases/"+case1+"/timeline", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	markers := body["data"].(map[string]any)["markers"].([]any)
	assert.Len(t, markers, 7)

	status, body = ts.do(t, "GET", "/shops/"+shopA+"/cases/"+caseMissing+"/timeline", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	ts := newTestServer(t, "")
	ts.inbox.items = []domain.Notification{{
		ID: notification1, ShopID: shopA, CaseID: case1, Type: domain.NotificationTypeSLAAlert,
		Severity: domain.AlertSeverityWarning, Title: "SLA deadline approaching", Message: "Case "+case1+" is due in 2 days",
	}}
	token := ts.token(t, shopA, domain.RoleStaff)

	status, body := ts.do(t, "GET", "/shops/"+shopA+"/notifications?unread=true&limit=500", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)
	assert.True(t, ts.inbox.lastList.UnreadOnly)
	assert.Equal(t, 100, ts.inbox.lastList.Limit)

	status, _ = ts.do(t, "GET", "/shops/"+shopA+"/notifications?unread=maybe", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = ts.do(t, "POST", "/shops/"+shopA+"/notifications/"+notification1+"/read", token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, []string{notification1}, ts.inbox.marked)

	status, _ = ts.do(t, "POST", "/shops/"+shopA+"/notifications/"+notificationMissing+"/read", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, "")

	status, body := ts.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = ts.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["dependencies"].(map[string]any)["postgres"])

	status, _ = ts.do(t, "GET", "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestHealthReady_DependencyDown(t *testing.T) {
	app := fiber.New()
	h := handlers.NewHealthHandler("svc", "test", map[string]handlers.Pinger{
		"postgres": fakePinger{},
		"redis":    fakePinger{err: errors.New("dial tcp: refused")},
	})
	app.Get("/health/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownRoute_ReturnsNotFoundEnvelope(t *testing.T) {
	ts := newTestServer(t, "")

	status, body := ts.do(t, "GET", "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestShopRoutes_MalformedIDsAreNotFound(t *testing.T) {
	ts := newTestServer(t, "")
	staff := ts.token(t, shopA, domain.RoleStaff)
	admin := ts.token(t, "", domain.RoleAdmin)

	status, body := ts.do(t, "GET", "/shops/"+shopA+"/cases/not-a-uuid/timeline", staff, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])

	status, _ = ts.do(t, "POST", "/shops/"+shopA+"/notifications/42/read", staff, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = ts.do(t, "GET", "/shops/acme/cases/sla", admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = ts.do(t, "GET", "/shops/"+shopA+"/notifications?case_id=abc", staff, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	assert.Zero(t, ts.caseSLA.calls)
	assert.Zero(t, ts.inbox.markCalls)
}

func TestAdminTrigger_RequiresAdminRole(t *testing.T) {
	ts := newTestServer(t, "")
	ts.runner.result = service.RunResult{ShopsChecked: 1}

	status, _ := ts.do(t, "POST", "/admin/jobs/sla-alerts", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ts.do(t, "POST", "/admin/jobs/sla-alerts", ts.token(t, shopA, domain.RoleOwner), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := ts.do(t, "POST", "/admin/jobs/sla-alerts", ts.token(t, "", domain.RoleAdmin), nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
}
