package auth

import (
	"fmt"
	"strings"
)

// Role decides which branches a session may report on.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleBranch Role = "branch"
)

// ParseRole maps a claim value to a Role. An empty value is treated as a
// branch-scoped user.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleBranch, "":
		return RoleBranch, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Session is the caller context a report Controller is constructed with.
type Session struct {
	Subject string
	Role    Role
	Branch  string
}

// IsAdmin reports whether the session may see every branch.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// PinnedBranch returns the branch every report of this session is restricted
// to, or "" when the session may choose freely.
func (s Session) PinnedBranch() string {
	if s.IsAdmin() {
		return ""
	}
	return s.Branch
}
