package domain

import "time"

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationTypeSLAAlert NotificationType = "sla_alert"
)

// AlertSeverity grades an SLA alert.
type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityImminent AlertSeverity = "imminent"
	AlertSeverityOverdue  AlertSeverity = "overdue"
)

// Notification is an alert record read later by shop staff.
type Notification struct {
	ID        string
	ShopID    string
	CaseID    string
	Type      NotificationType
	Severity  AlertSeverity
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}
