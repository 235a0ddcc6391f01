package ports

// Package ports defines interfaces (hexagonal ports) for storefront behavior.
// Implementations live in internal/adapters and internal/apiclient; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

// SessionStore persists and retrieves shopper sessions.
// Get returns an error satisfying errors.Is(err, ErrSessionNotFound) when no record exists
// and ErrSessionCorrupt when the stored record cannot be decoded.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// CartSnapshotStore keeps the last known cart per session so pages can render
// the cart badge without a backend round trip.
type CartSnapshotStore interface {
	SaveCart(ctx context.Context, sessionID string, cart model.Cart, ttl time.Duration) error
	// GetCart reports false when no snapshot exists.
	GetCart(ctx context.Context, sessionID string) (model.Cart, bool, error)
	DeleteCart(ctx context.Context, sessionID string) error
}

// IdentityObserver is notified whenever a session gains or loses its identity.
type IdentityObserver interface {
	IdentitySet(ctx context.Context, sessionID string, id domainauth.Identity)
	IdentityCleared(ctx context.Context, sessionID string)
}

// RoleMapper maps backend role spellings to application roles.
type RoleMapper interface {
	Map(raw string) domainauth.Role
}

// TokenInspector reads the expiry embedded in a bearer token without verifying it.
type TokenInspector interface {
	// ExpiresAt returns the zero time when the token carries no expiry.
	ExpiresAt(token string) (time.Time, error)
}
