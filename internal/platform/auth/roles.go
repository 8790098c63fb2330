package auth

// Roles carried in the token's roles claim.
const (
	RolePatient    = "Patient"
	RoleDoctor     = "Doctor"
	RoleOtherStaff = "OtherStaff"
)

// Common role sets used by route guards.
var (
	AnyRole = []string{RolePatient, RoleDoctor, RoleOtherStaff}
	Staff   = []string{RoleDoctor, RoleOtherStaff}
	Doctors = []string{RoleDoctor}
)

// IsKnownRole reports whether r is one of the recognised roles.
func IsKnownRole(r string) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleOtherStaff:
		return true
	}
	return false
}
