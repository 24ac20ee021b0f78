// Package sla computes processing-deadline state for repair cases. The same
// Assess function backs both the alert scheduler and the timeline view.
package sla

import (
	"math"
	"time"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

const day = 24 * time.Hour

// Assessment is the point-in-time deadline state of a case. It is never persisted.
type Assessment struct {
	ElapsedDays       float64
	RemainingDays     float64
	MaxProcessingDays int
	CurrentDayIndex   int
	IsOverdue         bool
	IsPaused          bool
	Class             domain.StatusClass
}

// Assess computes the deadline state of c at now. A zero-valued policy is
// replaced by the type default and an empty class is treated as active.
func Assess(c domain.RepairCase, policy domain.SLAPolicy, class domain.StatusClass, now time.Time) Assessment {
	if policy.MaxProcessingDays <= 0 {
		policy = domain.DefaultPolicy(c.ShopID, c.TypeKey)
	}
	if class == "" {
		class = domain.StatusClassActive
	}

	elapsed := now.Sub(c.CreatedAt).Hours() / day.Hours()
	if elapsed < 0 || c.CreatedAt.IsZero() {
		elapsed = 0
	}
	remaining := float64(policy.MaxProcessingDays) - elapsed
	paused := class.StopsClock()

	return Assessment{
		ElapsedDays:       elapsed,
		RemainingDays:     remaining,
		MaxProcessingDays: policy.MaxProcessingDays,
		CurrentDayIndex:   currentDayIndex(elapsed, policy.MaxProcessingDays),
		IsOverdue:         remaining < 0 && !paused,
		IsPaused:          paused,
		Class:             class,
	}
}

func currentDayIndex(elapsed float64, maxDays int) int {
	idx := int(math.Floor(elapsed)) + 1
	if idx > maxDays {
		return maxDays
	}
	return idx
}

// WholeDays rounds a remaining-days value away from zero, so 1.2 days left
// reads as 2 and 0.3 days late reads as 1 day late.
func WholeDays(remaining float64) int {
	if remaining >= 0 {
		return int(math.Ceil(remaining))
	}
	return -int(math.Ceil(-remaining))
}

// WholeRemainingDays is WholeDays applied to the assessment.
func (a Assessment) WholeRemainingDays() int {
	return WholeDays(a.RemainingDays)
}

// OverdueDays is the number of whole days past the deadline, zero when not overdue.
func (a Assessment) OverdueDays() int {
	if !a.IsOverdue {
		return 0
	}
	return -a.WholeRemainingDays()
}

// ShouldAlert reports whether the case is overdue or inside the warning window.
// Paused cases never alert.
func ShouldAlert(a Assessment, alertDays int) bool {
	if a.IsPaused {
		return false
	}
	if a.IsOverdue {
		return true
	}
	whole := a.WholeRemainingDays()
	return whole >= 0 && whole <= alertDays
}
