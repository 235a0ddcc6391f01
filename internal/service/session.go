package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/observability/metrics"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// SessionConfig tunes session lifetime and revalidation.
type SessionConfig struct {
	// TTL applies when the token carries no usable expiry.
	TTL time.Duration
	// Revalidate asks the backend whether the token is still accepted once
	// RevalidateInterval has elapsed since the last check.
	Revalidate         bool
	RevalidateInterval time.Duration
}

// DefaultSessionConfig returns the defaults used when configuration is absent.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:                24 * time.Hour,
		Revalidate:         true,
		RevalidateInterval: 5 * time.Minute,
	}
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Auth      ports.AuthAPI        // Required
	Sessions  ports.SessionStore   // Required
	Roles     ports.RoleMapper     // Optional: defaults to domainauth.ParseRole
	Tokens    ports.TokenInspector // Optional: without it sessions use Config.TTL
	Observers []ports.IdentityObserver
	Config    SessionConfig
	Metrics   statsd.Sink
	Logger    *slog.Logger
	Clock     func() time.Time
}

// SessionService owns the shopper session: restore on each request, login,
// registration and logout. Token and identity are always written and erased together.
type SessionService struct {
	auth      ports.AuthAPI
	sessions  ports.SessionStore
	roles     ports.RoleMapper
	tokens    ports.TokenInspector
	observers []ports.IdentityObserver
	cfg       SessionConfig
	metrics   statsd.Sink
	logger    *slog.Logger
	now       func() time.Time
}

type parseRoleMapper struct{}

func (parseRoleMapper) Map(raw string) domainauth.Role { return domainauth.ParseRole(raw) }

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	if opts.Auth == nil {
		return nil, errors.New("auth API is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}

	cfg := opts.Config
	def := DefaultSessionConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.RevalidateInterval <= 0 {
		cfg.RevalidateInterval = def.RevalidateInterval
	}

	roles := opts.Roles
	if roles == nil {
		roles = parseRoleMapper{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &SessionService{
		auth:      opts.Auth,
		sessions:  opts.Sessions,
		roles:     roles,
		tokens:    opts.Tokens,
		observers: opts.Observers,
		cfg:       cfg,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "session_service"),
		now:       now,
	}, nil
}

// RestoreResult is the outcome of restoring a session for one request.
// Loading stays true only when the store could not be read, so callers
// can render a pending state instead of guessing.
type RestoreResult struct {
	Session *domainauth.Session
	Loading bool
}

// Authenticated reports whether a session was restored.
func (r *RestoreResult) Authenticated() bool {
	return r != nil && !r.Loading && r.Session != nil
}

// Restore loads the persisted session for sessionID. Missing, corrupted and
// expired records all yield an unauthenticated result without error; the
// last two are deleted. Only store failures are returned as errors.
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*RestoreResult, error) {
	res := &RestoreResult{Loading: true}
	if sessionID == "" {
		res.Loading = false
		return res, nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		res.Loading = false
		return res, nil
	case errors.Is(err, ports.ErrSessionCorrupt):
		s.logger.WarnContext(ctx, "discarding unreadable session record", "session_id", sessionID, "error", err)
		s.clear(ctx, sessionID)
		metrics.EmitSessionEvent(s.metrics, "restore", "corrupt")
		res.Loading = false
		return res, nil
	case err != nil:
		metrics.EmitSessionEvent(s.metrics, "restore", metrics.ResultError)
		return res, fmt.Errorf("get session: %w", err)
	}

	if sess.Expired(s.now()) {
		s.logger.DebugContext(ctx, "session expired", "session_id", sessionID, "expires_at", sess.ExpiresAt)
		s.clear(ctx, sessionID)
		metrics.EmitSessionEvent(s.metrics, "restore", "expired")
		res.Loading = false
		return res, nil
	}

	if s.needsRevalidation(sess) && !s.revalidate(ctx, &sess) {
		s.clear(ctx, sessionID)
		metrics.EmitSessionEvent(s.metrics, "restore", "revoked")
		res.Loading = false
		return res, nil
	}

	res.Session = &sess
	res.Loading = false
	return res, nil
}

func (s *SessionService) needsRevalidation(sess domainauth.Session) bool {
	if !s.cfg.Revalidate {
		return false
	}
	return s.now().Sub(sess.ValidatedAt) >= s.cfg.RevalidateInterval
}

// revalidate reports whether the session may be kept. Connectivity and
// server failures keep it; only an explicit rejection drops it.
func (s *SessionService) revalidate(ctx context.Context, sess *domainauth.Session) bool {
	valid, err := s.auth.Validate(ctx, sess.Token)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindNetwork) || apiclient.IsKind(err, apiclient.KindServer) || ctx.Err() != nil {
			s.logger.WarnContext(ctx, "session revalidation unavailable, keeping session",
				"session_id", sess.ID, "error", err)
			return true
		}
		s.logger.InfoContext(ctx, "session rejected by backend", "session_id", sess.ID, "error", err)
		return false
	}
	if !valid {
		return false
	}

	sess.ValidatedAt = s.now()
	if saveErr := s.sessions.Save(ctx, *sess); saveErr != nil {
		s.logger.WarnContext(ctx, "failed to record session revalidation", "session_id", sess.ID, "error", saveErr)
	}
	return true
}

// Login submits credentials and establishes a session on success.
// Rejected credentials come back as a domain error carrying the backend message.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domainauth.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Email et mot de passe requis")
	}

	resp, err := s.auth.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		metrics.EmitSessionEvent(s.metrics, "login", metrics.ResultError)
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.Establish(ctx, s.identityFrom(resp), resp.Token)
}

// Register creates an account. When the backend hands back a token the
// shopper is signed in immediately; otherwise the returned session is nil.
func (s *SessionService) Register(ctx context.Context, req model.RegisterRequest) (*domainauth.Session, error) {
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		metrics.EmitSessionEvent(s.metrics, "register", metrics.ResultError)
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.EmitSessionEvent(s.metrics, "register", metrics.ResultSuccess)
	if resp.Token == "" {
		return nil, nil
	}
	return s.Establish(ctx, s.identityFrom(resp), resp.Token)
}

func (s *SessionService) identityFrom(resp model.AuthResponse) domainauth.Identity {
	return domainauth.Identity{
		UserID: resp.ID,
		Name:   resp.Name,
		Email:  resp.Email,
		Role:   s.roles.Map(resp.Role),
	}
}

// Establish stores token and identity as one record under a fresh session ID
// and notifies identity observers.
func (s *SessionService) Establish(ctx context.Context, id domainauth.Identity, token string) (*domainauth.Session, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	if !id.Role.Valid() {
		id.Role = domainauth.RoleUser
	}

	now := s.now()
	sess := domainauth.Session{
		ID:          uuid.New().String(),
		Token:       token,
		UserID:      id.UserID,
		Name:        id.Name,
		Email:       id.Email,
		Role:        id.Role,
		ExpiresAt:   s.expiryFor(token, now),
		ValidatedAt: now,
	}
	if !sess.ExpiresAt.After(now) {
		return nil, apperrors.Unauthorized(apiclient.MsgSessionExpired)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		metrics.EmitSessionEvent(s.metrics, "login", metrics.ResultError)
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.EmitSessionEvent(s.metrics, "login", metrics.ResultSuccess)
	s.logger.InfoContext(ctx, "session established", "session_id", sess.ID, "user_id", sess.UserID, "role", string(sess.Role))

	for _, o := range s.observers {
		o.IdentitySet(ctx, sess.ID, sess.Identity())
	}
	return &sess, nil
}

func (s *SessionService) expiryFor(token string, now time.Time) time.Time {
	fallback := now.Add(s.cfg.TTL)
	if s.tokens == nil {
		return fallback
	}
	exp, err := s.tokens.ExpiresAt(token)
	if err != nil {
		s.logger.Debug("token expiry unreadable, using session TTL", "error", err)
		return fallback
	}
	if exp.IsZero() {
		return fallback
	}
	return exp
}

// Logout ends the session: the backend is told on a best-effort basis, the
// record is deleted and observers are notified. Unknown or empty IDs are a no-op.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if sess, err := s.sessions.Get(ctx, sessionID); err == nil && sess.Token != "" {
		if logoutErr := s.auth.Logout(apiclient.WithToken(ctx, sess.Token)); logoutErr != nil {
			s.logger.DebugContext(ctx, "backend logout failed", "session_id", sessionID, "error", logoutErr)
		}
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		metrics.EmitSessionEvent(s.metrics, "logout", metrics.ResultError)
		return fmt.Errorf("delete session: %w", err)
	}
	s.notifyCleared(ctx, sessionID)
	metrics.EmitSessionEvent(s.metrics, "logout", metrics.ResultSuccess)
	return nil
}

// Invalidate drops the session without contacting the backend. It runs when
// the backend has already rejected the token.
func (s *SessionService) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.notifyCleared(ctx, sessionID)
	metrics.EmitSessionEvent(s.metrics, "invalidate", metrics.ResultSuccess)
	return nil
}

// clear deletes a record found unusable during restore.
func (s *SessionService) clear(ctx context.Context, sessionID string) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete session record", "session_id", sessionID, "error", err)
	}
	s.notifyCleared(ctx, sessionID)
}

func (s *SessionService) notifyCleared(ctx context.Context, sessionID string) {
	for _, o := range s.observers {
		o.IdentityCleared(ctx, sessionID)
	}
}
