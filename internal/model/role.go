package model

import "strings"

// Role is the portal a user signs up or signs in under.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

// Destination is the landing area the caller navigates to after a flow completes.
type Destination string

const (
	DestinationStudentHome Destination = "/(tabs)/home"
	DestinationStaffHome   Destination = "/(staff)/home"
	// DestinationChooseRole is where guests land; they pick a portal there.
	DestinationChooseRole Destination = "/choose-role"
)

// ParseRole normalizes raw input into a Role. The second return is false for
// anything other than student or staff.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleStaff
}

// Title returns the display form used in user-facing messages.
func (r Role) Title() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleStaff:
		return "Staff"
	default:
		return string(r)
	}
}

// Destination maps a role to its landing area. Exactly one destination exists
// per valid role.
func (r Role) Destination() Destination {
	if r == RoleStaff {
		return DestinationStaffHome
	}
	return DestinationStudentHome
}
