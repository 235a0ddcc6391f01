package tokenclaims

// Package tokenclaims reads claims from backend-issued bearer tokens.
// Signatures are not verified here; the backend stays the authority and is
// asked through POST /auth/validate when a session needs revalidation.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/target/parapharmacie-storefront/internal/ports"
)

var _ ports.TokenInspector = (*Inspector)(nil)

// ErrEmptyToken is returned when no token is supplied.
var ErrEmptyToken = errors.New("empty token")

// Inspector extracts the expiry of a JWT without verifying its signature.
type Inspector struct {
	parser *jwt.Parser
}

// NewInspector constructs an Inspector.
func NewInspector() *Inspector {
	return &Inspector{parser: jwt.NewParser()}
}

// ExpiresAt returns the token "exp" claim, or the zero time when absent.
func (i *Inspector) ExpiresAt(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, ErrEmptyToken
	}
	var claims jwt.RegisteredClaims
	if _, _, err := i.parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token claims: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Subject returns the token "sub" claim (the backend puts the account email there).
func (i *Inspector) Subject(token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	var claims jwt.RegisteredClaims
	if _, _, err := i.parser.ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("parse token claims: %w", err)
	}
	return claims.Subject, nil
}
