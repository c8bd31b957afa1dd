package domain

import "slices"

// Role represents an operator role carried in admin tokens
type Role string

const (
	// RoleAdmin can provision tenants and schedule exports
	RoleAdmin Role = "admin"

	// RoleOperator can read the debug endpoints
	RoleOperator Role = "operator"
)

// ValidRoles contains all valid roles in the system
var ValidRoles = []Role{RoleAdmin, RoleOperator}

// IsValidRole checks if a given role is valid
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, Role(role))
}

// HasAnyRole checks if a slice of roles contains any of the specified roles
func HasAnyRole(roles []string, requiredRoles ...Role) bool {
	for _, required := range requiredRoles {
		if slices.Contains(roles, string(required)) {
			return true
		}
	}
	return false
}
