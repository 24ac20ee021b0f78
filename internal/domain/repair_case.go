package domain

import "time"

// CaseTypeKey identifies a repair case type within a shop.
type CaseTypeKey string

// Built-in case types every shop starts with.
const (
	CaseTypeRepair     CaseTypeKey = "repair"
	CaseTypeWarranty   CaseTypeKey = "warranty"
	CaseTypeDiagnostic CaseTypeKey = "diagnostic"
)

// RepairCase is the read-only view of a repair ticket used for deadline tracking.
type RepairCase struct {
	ID        string
	ShopID    string
	TypeKey   CaseTypeKey
	StatusKey string
	CreatedAt time.Time
}
