package dto

import (
	"time"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/sla"
)

// RunAlertsResponse is returned by the job trigger.
type RunAlertsResponse struct {
	Success            bool   `json:"success"`
	Partial            bool   `json:"partial"`
	RunID              string `json:"run_id"`
	ShopsChecked       int    `json:"shops_checked"`
	ShopsFailed        int    `json:"shops_failed"`
	CasesChecked       int    `json:"cases_checked"`
	CasesFailed        int    `json:"cases_failed"`
	CasesSkipped       int    `json:"cases_skipped"`
	AlertsCreated      int    `json:"alerts_created"`
	AlertsDeduplicated int    `json:"alerts_deduplicated"`
	DurationMS         int64  `json:"duration_ms"`
}

// AssessmentResponse is the computed deadline state of one case.
type AssessmentResponse struct {
	ElapsedDays        float64            `json:"elapsed_days"`
	RemainingDays      float64            `json:"remaining_days"`
	WholeRemainingDays int                `json:"whole_remaining_days"`
	MaxProcessingDays  int                `json:"max_processing_days"`
	CurrentDayIndex    int                `json:"current_day_index"`
	IsOverdue          bool               `json:"is_overdue"`
	IsPaused           bool               `json:"is_paused"`
	StatusClass        domain.StatusClass `json:"status_class"`
}

// CaseSLAResponse lists a case with its assessment.
type CaseSLAResponse struct {
	CaseID     string             `json:"case_id"`
	TypeKey    domain.CaseTypeKey `json:"type_key"`
	StatusKey  string             `json:"status_key"`
	CreatedAt  time.Time          `json:"created_at"`
	AlertDays  int                `json:"alert_days"`
	ShouldWarn bool               `json:"should_warn"`
	Assessment AssessmentResponse `json:"assessment"`
}

// MarkerResponse is one timeline marker.
type MarkerResponse struct {
	Day   int             `json:"day"`
	State sla.MarkerState `json:"state"`
}

// TimelineResponse renders a case timeline.
type TimelineResponse struct {
	CaseID     string             `json:"case_id"`
	Markers    []MarkerResponse   `json:"markers"`
	Assessment AssessmentResponse `json:"assessment"`
}

// NotificationResponse is an SLA alert in the inbox.
type NotificationResponse struct {
	ID        string               `json:"id"`
	CaseID    string               `json:"case_id"`
	Type      string               `json:"type"`
	Severity  domain.AlertSeverity `json:"severity"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Read      bool                 `json:"read"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewAssessmentResponse maps an assessment.
func NewAssessmentResponse(a sla.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ElapsedDays:        a.ElapsedDays,
		RemainingDays:      a.RemainingDays,
		WholeRemainingDays: a.WholeRemainingDays(),
		MaxProcessingDays:  a.MaxProcessingDays,
		CurrentDayIndex:    a.CurrentDayIndex,
		IsOverdue:          a.IsOverdue,
		IsPaused:           a.IsPaused,
		StatusClass:        a.Class,
	}
}

// NewNotificationResponse maps a stored notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		CaseID:    n.CaseID,
		Type:      string(n.Type),
		Severity:  n.Severity,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
