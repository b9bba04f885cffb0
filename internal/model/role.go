package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. There is no third role; guards must
// go through Has rather than comparing strings so every authorization decision
// uses the same rule.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability names a privileged action a role may grant.
type Capability string

const (
	// CapManageUsers allows listing, reading and mutating other users'
	// accounts. Granted to admins only; it is what lets an admin bypass
	// ownership checks on per-user resources.
	CapManageUsers Capability = "manage_users"
)

// ParseRole normalizes and validates a role string. Unknown values are
// rejected rather than defaulted so a corrupted record cannot widen access.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Has reports whether the role grants the capability.
func (r Role) Has(c Capability) bool {
	switch c {
	case CapManageUsers:
		return r == RoleAdmin
	default:
		return false
	}
}
