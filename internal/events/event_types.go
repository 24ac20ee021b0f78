package events

import (
	"time"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSLAAlertCreated EventType = "sla_alert_created"
	EventSLARunCompleted EventType = "sla_run_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ShopID    string      `json:"shop_id,omitempty"`
	CaseID    string      `json:"case_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SLAAlertCreatedPayload payload.
type SLAAlertCreatedPayload struct {
	NotificationID string               `json:"notification_id"`
	Severity       domain.AlertSeverity `json:"severity"`
	Title          string               `json:"title"`
	Message        string               `json:"message"`
	RemainingDays  float64              `json:"remaining_days"`
}

// SLARunCompletedPayload payload.
type SLARunCompletedPayload struct {
	RunID         string        `json:"run_id"`
	ShopsChecked  int           `json:"shops_checked"`
	ShopsFailed   int           `json:"shops_failed"`
	CasesFailed   int           `json:"cases_failed"`
	CasesSkipped  int           `json:"cases_skipped"`
	AlertsCreated int           `json:"alerts_created"`
	Duration      time.Duration `json:"duration"`
}
