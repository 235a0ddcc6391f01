package redis

// Package redis provides Redis-backed adapters for sessions, cart snapshots and caching.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/parapharmacie-storefront/internal/cryptoutil"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// DefaultSessionPrefix is the key prefix for session records.
const DefaultSessionPrefix = "session:"

// SessionStore is a Redis-based session store for production use.
// Token and identity are written as one JSON value so they are always erased together.
type SessionStore struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
	sealer     cryptoutil.Sealer
}

// SessionStoreOptions configures NewSessionStore.
type SessionStoreOptions struct {
	Prefix string
	// DefaultTTL applies to sessions whose token carried no expiry.
	DefaultTTL time.Duration
	// Sealer encrypts the bearer token at rest. Nil stores it as is.
	Sealer cryptoutil.Sealer
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sealer := opts.Sealer
	if sealer == nil {
		sealer = cryptoutil.Plain{}
	}
	return &SessionStore{client: client, prefix: prefix, defaultTTL: ttl, sealer: sealer}
}

var _ ports.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := s.defaultTTL
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return errors.New("session is expired")
		}
	}

	sealed, err := s.sealer.Seal(sess.Token)
	if err != nil {
		return fmt.Errorf("seal session token: %w", err)
	}
	sess.Token = sealed

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %w", ports.ErrSessionCorrupt, unmarshalErr)
	}
	if sess.ID != id || sess.Token == "" {
		return domainauth.Session{}, fmt.Errorf("%w: token and identity mismatch", ports.ErrSessionCorrupt)
	}
	token, err := s.sealer.Open(sess.Token)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %w", ports.ErrSessionCorrupt, err)
	}
	sess.Token = token

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// SessionSummary is a redacted view of a stored session used by operators.
type SessionSummary struct {
	ID        string
	Email     string
	Role      domainauth.Role
	ExpiresAt time.Time
	Corrupt   bool
}

// List scans stored sessions without exposing tokens.
func (s *SessionStore) List(ctx context.Context) ([]SessionSummary, error) {
	var out []SessionSummary
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := key[len(s.prefix):]
		sess, err := s.Get(ctx, id)
		switch {
		case errors.Is(err, ports.ErrSessionNotFound):
			continue
		case errors.Is(err, ports.ErrSessionCorrupt):
			out = append(out, SessionSummary{ID: id, Corrupt: true})
		case err != nil:
			return nil, err
		default:
			out = append(out, SessionSummary{ID: id, Email: sess.Email, Role: sess.Role, ExpiresAt: sess.ExpiresAt})
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}
