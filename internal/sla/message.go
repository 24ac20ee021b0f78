package sla

import (
	"fmt"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// Alert is the composed content of an SLA notification.
type Alert struct {
	Severity domain.AlertSeverity
	Title    string
	Message  string
}

// ComposeAlert grades the assessment and renders title and message.
func ComposeAlert(caseID string, a Assessment) Alert {
	whole := a.WholeRemainingDays()
	switch {
	case a.IsOverdue:
		return Alert{
			Severity: domain.AlertSeverityOverdue,
			Title:    "Repair case overdue",
			Message:  fmt.Sprintf("Case %s is overdue by %d day(s)", caseID, a.OverdueDays()),
		}
	case whole == 0:
		return Alert{
			Severity: domain.AlertSeverityImminent,
			Title:    "Repair case due today",
			Message:  fmt.Sprintf("Case %s is due within 24 hours", caseID),
		}
	default:
		return Alert{
			Severity: domain.AlertSeverityWarning,
			Title:    "Repair case due soon",
			Message:  fmt.Sprintf("Case %s is due in %d day(s)", caseID, whole),
		}
	}
}
