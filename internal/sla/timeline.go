package sla

import "github.com/spec-kit/repair-sla-service/internal/domain"

// MarkerState tags a day on the timeline.
type MarkerState string

const (
	MarkerPast     MarkerState = "past"
	MarkerCurrent  MarkerState = "current"
	MarkerUpcoming MarkerState = "upcoming"
	MarkerOverdue  MarkerState = "overdue"
	MarkerTerminal MarkerState = "terminal"
)

// Marker is one visual step of a case timeline.
type Marker struct {
	Day   int
	State MarkerState
}

// Timeline is the rendered progress of a case towards its deadline.
type Timeline struct {
	Markers    []Marker
	Assessment Assessment
}

// RenderTimeline lays an assessment out as one marker per allowed processing
// day, followed by a terminal marker when the case reached a final status.
func RenderTimeline(a Assessment) Timeline {
	markers := make([]Marker, 0, a.MaxProcessingDays+1)
	for d := 1; d <= a.MaxProcessingDays; d++ {
		state := MarkerUpcoming
		switch {
		case d < a.CurrentDayIndex:
			state = MarkerPast
		case d == a.CurrentDayIndex && a.IsOverdue:
			state = MarkerOverdue
		case d == a.CurrentDayIndex:
			state = MarkerCurrent
		}
		markers = append(markers, Marker{Day: d, State: state})
	}
	if a.Class == domain.StatusClassTerminal {
		markers = append(markers, Marker{Day: a.MaxProcessingDays + 1, State: MarkerTerminal})
	}
	return Timeline{Markers: markers, Assessment: a}
}
