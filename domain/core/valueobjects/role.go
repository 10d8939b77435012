package valueobjects

import "strings"

// Role identifies who authored a message node in the conversation tree
type Role string

const (
	RoleSystem    Role = "SYSTEM"
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

// ParseRole creates a Role from a string, accepting any casing
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleSystem:
		return RoleSystem, true
	case RoleUser:
		return RoleUser, true
	case RoleAssistant:
		return RoleAssistant, true
	default:
		return "", false
	}
}

// String returns the canonical upper-case form
func (r Role) String() string {
	return string(r)
}

// Wire returns the lower-case form used on the AI collaborator boundary
func (r Role) Wire() string {
	return strings.ToLower(string(r))
}

// IsValid checks the role is one of the three known values
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// IsUser reports whether the role is USER. Only USER nodes are forked on
// edit; every other role is updated in place.
func (r Role) IsUser() bool {
	return r == RoleUser
}
