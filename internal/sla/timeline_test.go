package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

func states(tl Timeline) []MarkerState {
	out := make([]MarkerState, 0, len(tl.Markers))
	for _, m := range tl.Markers {
		out = append(out, m.State)
	}
	return out
}

func TestRenderTimeline_InProgress(t *testing.T) {
	a := Assess(testCase(), fiveDayPolicy(), domain.StatusClassActive, jan1.Add(2*day+time.Hour))
	tl := RenderTimeline(a)

	assert.Equal(t, []MarkerState{MarkerPast, MarkerPast, MarkerCurrent, MarkerUpcoming, MarkerUpcoming}, states(tl))
	assert.Equal(t, 3, tl.Markers[2].Day)
}

func TestRenderTimeline_OverdueMarksLastDay(t *testing.T) {
	a := Assess(testCase(), fiveDayPolicy(), domain.StatusClassActive, jan1.Add(7*day))
	tl := RenderTimeline(a)

	assert.Equal(t, []MarkerState{MarkerPast, MarkerPast, MarkerPast, MarkerPast, MarkerOverdue}, states(tl))
}

func TestRenderTimeline_TerminalAppendsMarker(t *testing.T) {
	a := Assess(testCase(), fiveDayPolicy(), domain.StatusClassTerminal, jan1.Add(7*day))
	tl := RenderTimeline(a)

	require.Len(t, tl.Markers, 6)
	assert.Equal(t, MarkerTerminal, tl.Markers[5].State)
	assert.Equal(t, MarkerCurrent, tl.Markers[4].State)
}

func TestRenderTimeline_AgreesWithAlerting(t *testing.T) {
	for h := 0; h < 24*9; h += 5 {
		a := Assess(testCase(), fiveDayPolicy(), domain.StatusClassActive, jan1.Add(time.Duration(h)*time.Hour))
		tl := RenderTimeline(a)
		hasOverdue := false
		for _, m := range tl.Markers {
			if m.State == MarkerOverdue {
				hasOverdue = true
			}
		}
		assert.Equal(t, a.IsOverdue, hasOverdue, "hour %d", h)
	}
}
