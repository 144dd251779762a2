package rbac

import "fmt"

// Role is the closed set of account roles. Keep these stable; they are part
// of auth contracts and are persisted on user rows.
type Role string

const (
	// RoleAdmin manages users, customers and call tickets.
	RoleAdmin Role = "admin"
	// RoleUser is a call-center agent working assigned customers/calls.
	RoleUser Role = "user"
)

// ParseRole validates a stored or submitted role string against the closed
// enumeration. Unknown roles are rejected at the write boundary rather than
// carried around as free-form strings.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func IsAdmin(r Role) bool { return r == RoleAdmin }
