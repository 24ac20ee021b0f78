package domain

// StatusClass collapses the pause/final flags of a status into one value.
type StatusClass string

const (
	StatusClassActive   StatusClass = "active"
	StatusClassPaused   StatusClass = "paused"
	StatusClassTerminal StatusClass = "terminal"
)

// ClassifyStatus maps the stored flags to a StatusClass. Final wins over pause.
func ClassifyStatus(pauseTimer, isFinal bool) StatusClass {
	switch {
	case isFinal:
		return StatusClassTerminal
	case pauseTimer:
		return StatusClassPaused
	default:
		return StatusClassActive
	}
}

// StopsClock reports whether the deadline clock is stopped.
func (c StatusClass) StopsClock() bool {
	return c == StatusClassPaused || c == StatusClassTerminal
}

// StatusDefinition is a shop's catalog entry for a case status.
type StatusDefinition struct {
	ShopID        string
	Key           string
	Label         string
	PauseTimer    bool
	IsFinalStatus bool
	Class         StatusClass
}

// Classify sets Class from the stored flags.
func (s StatusDefinition) Classify() StatusDefinition {
	s.Class = ClassifyStatus(s.PauseTimer, s.IsFinalStatus)
	return s
}
