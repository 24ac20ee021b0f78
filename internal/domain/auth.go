package domain

// Role differentiates callers of shop-scoped endpoints.
type Role string

const (
	RoleStaff Role = "STAFF"
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
)
