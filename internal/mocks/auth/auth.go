package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.CartSnapshotStore = (*MemoryCartStore)(nil)
	_ ports.IdentityObserver  = (*RecordingObserver)(nil)
	_ ports.RoleMapper        = StaticRoleMapper{}
	_ ports.TokenInspector    = (*StaticTokenInspector)(nil)
)

// MemorySessionStore is an in-memory session store for unit tests.
// Raw holds undecodable records keyed by ID to simulate corruption.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	Raw      map[string]bool
	Err      error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
		Raw:      make(map[string]bool),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.Err != nil {
		return m.Err
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	delete(m.Raw, sess.ID)
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.Err != nil {
		return domainauth.Session{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Raw[id] {
		return domainauth.Session{}, ports.ErrSessionCorrupt
	}
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.Raw, id)
	return nil
}

// Corrupt marks id as holding an undecodable record.
func (m *MemorySessionStore) Corrupt(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Raw[id] = true
}

// Has reports whether any record, valid or corrupt, exists for id.
func (m *MemorySessionStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok || m.Raw[id]
}

// Len returns the number of stored records.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions) + len(m.Raw)
}

// MemoryCartStore is an in-memory cart snapshot store for unit tests.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]model.Cart
	ttls  map[string]time.Duration
}

// NewMemoryCartStore creates a new in-memory cart snapshot store.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]model.Cart), ttls: make(map[string]time.Duration)}
}

func (m *MemoryCartStore) SaveCart(_ context.Context, sessionID string, cart model.Cart, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = cart
	m.ttls[sessionID] = ttl
	return nil
}

// TTL returns the expiry passed with the last save for sessionID.
func (m *MemoryCartStore) TTL(sessionID string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[sessionID]
}

func (m *MemoryCartStore) GetCart(_ context.Context, sessionID string) (model.Cart, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return model.EmptyCart(), false, nil
	}
	return c, true, nil
}

func (m *MemoryCartStore) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	delete(m.ttls, sessionID)
	return nil
}

// Event is one identity transition seen by RecordingObserver.
type Event struct {
	SessionID string
	Identity  *domainauth.Identity
}

// RecordingObserver captures identity transitions in order.
type RecordingObserver struct {
	mu     sync.Mutex
	Events []Event
}

func (o *RecordingObserver) IdentitySet(_ context.Context, sessionID string, id domainauth.Identity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Events = append(o.Events, Event{SessionID: sessionID, Identity: &id})
}

func (o *RecordingObserver) IdentityCleared(_ context.Context, sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Events = append(o.Events, Event{SessionID: sessionID})
}

// StaticRoleMapper defers to domainauth.ParseRole.
type StaticRoleMapper struct{}

func (StaticRoleMapper) Map(raw string) domainauth.Role { return domainauth.ParseRole(raw) }

// StaticTokenInspector returns a fixed expiry for every token.
type StaticTokenInspector struct {
	Expiry time.Time
	Err    error
}

func (s *StaticTokenInspector) ExpiresAt(string) (time.Time, error) { return s.Expiry, s.Err }
