package models

// Account roles, ordered from least to most privileged.
const (
	RoleUser      = "USER"
	RoleOwner     = "OWNER"
	RoleTreasurer = "TREASURER"
	RoleAdmin     = "ADMIN"
)

// RoleRank maps a role to its position in the privilege order.
// Unknown roles rank 0 and therefore fail every minimum-rank check.
func RoleRank(role string) int {
	switch role {
	case RoleUser:
		return 1
	case RoleOwner:
		return 2
	case RoleTreasurer:
		return 3
	case RoleAdmin:
		return 4
	default:
		return 0
	}
}

// HasMinRole reports whether role meets the minimum required role.
func HasMinRole(role, minRole string) bool {
	return RoleRank(role) >= RoleRank(minRole) && RoleRank(role) > 0
}

// KnownRole reports whether role is part of the closed role set.
func KnownRole(role string) bool {
	return RoleRank(role) > 0
}
