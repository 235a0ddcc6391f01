package auth

// Package auth contains domain-level types for shopper identity and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"slices"
	"strings"
	"time"
)

// Role represents a storefront authorization role.
// Keep string form for easy persistence in session records.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Landing paths used after login and when a role guard turns a user away.
const (
	PathAdminConsole   = "/admin"
	PathManagerConsole = "/manager"
	PathCatalog        = "/products"
)

// ParseRole maps backend role spellings ("ADMIN", "ROLE_MANAGER", "user") to a Role.
// Unknown or empty values fall back to RoleUser.
func ParseRole(raw string) Role {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, "role_")
	switch Role(v) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	default:
		return RoleUser
	}
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// Wire returns the upper-case spelling the backend expects.
func (r Role) Wire() string { return strings.ToUpper(string(r)) }

// RedirectTargetFor is the single role → landing path mapping.
// Both the login flow and the role guard use it.
func RedirectTargetFor(role Role) string {
	switch role {
	case RoleAdmin:
		return PathAdminConsole
	case RoleManager:
		return PathManagerConsole
	default:
		return PathCatalog
	}
}

// Identity is the signed-in principal as reported by the backend.
type Identity struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Session is the server-side record persisted for a signed-in shopper.
// Token and identity are stored together and erased together.
type Session struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
	ValidatedAt time.Time `json:"validated_at"`
}

// Identity returns the principal held by the session.
func (s Session) Identity() Identity {
	return Identity{UserID: s.UserID, Name: s.Name, Email: s.Email, Role: s.Role}
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasRole reports whether the session holds the given role. Nil sessions hold none.
func HasRole(s *Session, role Role) bool {
	return s != nil && s.Role == role
}

// HasAnyRole reports whether the session holds one of the given roles.
func HasAnyRole(s *Session, roles ...Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(roles, s.Role)
}
