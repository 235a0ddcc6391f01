package config

import "time"

// SessionConfig controls shopper session lifetime.
type SessionConfig struct {
	// CookieName names the cookie holding the opaque session ID.
	CookieName string `env:"COOKIE_NAME" envDefault:"session_id"`

	// TTL applies when the backend token has no readable expiry.
	TTL time.Duration `env:"TTL" envDefault:"24h"`

	// Revalidate asks the backend to confirm the token every RevalidateInterval.
	Revalidate         bool          `env:"REVALIDATE"          envDefault:"true"`
	RevalidateInterval time.Duration `env:"REVALIDATE_INTERVAL" envDefault:"5m"`

	// KeyPrefix namespaces session records in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"session:"`
	// RoleAliases maps extra backend role names to application roles, as "ALIAS=role" pairs.
	RoleAliases []string `env:"ROLE_ALIASES" envDefault:""`

	// TokenKey encrypts bearer tokens in Redis when set: 32 bytes, base64 or hex.
	TokenKey string `env:"TOKEN_KEY"`
}

// Sanitize applies guardrails to session configuration.
func (s *SessionConfig) Sanitize() {
	if s.CookieName == "" {
		s.CookieName = "session_id"
	}
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
	if s.RevalidateInterval < time.Second {
		s.RevalidateInterval = time.Second
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "session:"
	}
}
