package domain

// DefaultAlertDays is the early-warning threshold used when a policy omits one.
const DefaultAlertDays = 2

// FallbackMaxProcessingDays applies to custom case types with no configured policy.
const FallbackMaxProcessingDays = 7

var builtinMaxProcessingDays = map[CaseTypeKey]int{
	CaseTypeRepair:     7,
	CaseTypeWarranty:   9,
	CaseTypeDiagnostic: 5,
}

// SLAPolicy is the per-shop, per-case-type deadline configuration.
type SLAPolicy struct {
	ShopID            string
	TypeKey           CaseTypeKey
	MaxProcessingDays int
	AlertDays         int
}

// DefaultPolicy returns the hardcoded policy for a case type.
func DefaultPolicy(shopID string, typeKey CaseTypeKey) SLAPolicy {
	days, ok := builtinMaxProcessingDays[typeKey]
	if !ok {
		days = FallbackMaxProcessingDays
	}
	return SLAPolicy{
		ShopID:            shopID,
		TypeKey:           typeKey,
		MaxProcessingDays: days,
		AlertDays:         DefaultAlertDays,
	}
}

// Normalize fills gaps in a stored policy with the type defaults.
func (p SLAPolicy) Normalize() SLAPolicy {
	if p.MaxProcessingDays <= 0 {
		p.MaxProcessingDays = DefaultPolicy(p.ShopID, p.TypeKey).MaxProcessingDays
	}
	if p.AlertDays < 0 {
		p.AlertDays = DefaultAlertDays
	}
	return p
}
