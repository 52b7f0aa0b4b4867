package enums

import (
	"fmt"
	"strings"
)

// Role is the viewer's authorization tier. RoleGuest is never persisted; it
// stands for a request without a session.
type Role string

const (
	RoleGuest          Role = "GUEST"
	RoleAdmin          Role = "ADMIN"
	RoleRepresentative Role = "REPRESENTATIVE"
	RoleSacoleira      Role = "SACOLEIRA"
)

// validAccountRoles lists the roles a stored user account may carry.
var validAccountRoles = []Role{
	RoleAdmin,
	RoleRepresentative,
	RoleSacoleira,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role, guest included.
func (r Role) IsValid() bool {
	return r == RoleGuest || r.IsAccountRole()
}

// IsAccountRole reports whether a user account may be assigned r.
func (r Role) IsAccountRole() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAuthenticated reports whether r belongs to a logged-in viewer.
func (r Role) IsAuthenticated() bool {
	return r.IsAccountRole()
}

// ParseRole converts raw input into an account Role. Matching ignores case.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validAccountRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
