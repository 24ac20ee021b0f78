package domain

// Shop is a tenant whose open cases are swept for SLA alerts.
type Shop struct {
	ID               string
	Name             string
	SLAAlertsEnabled bool
}
