package domain

import (
	"fmt"
	"strings"
)

// Role of the acting account
type Role string

const (
	RoleClient   Role = "client"
	RoleBusiness Role = "business"
)

// ParseRole accepts "client" or "business" in any case
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	switch role {
	case RoleClient, RoleBusiness:
		return role, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// Actor is the authenticated identity an operation is performed for
type Actor struct {
	ID   int64
	Role Role
}
