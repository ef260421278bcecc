package auth

// Role represents a portal user role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleCustomer, RoleReviewer, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleCustomer:
		return 1
	case RoleReviewer:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
