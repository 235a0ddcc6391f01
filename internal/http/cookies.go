package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
)

// DefaultSessionCookieName is used when CookieConfig.SessionName is empty.
const DefaultSessionCookieName = "session_id"

// CookieConfig controls the attributes of every cookie the storefront sets.
type CookieConfig struct {
	SessionName string
	Domain      string
	// Secure forces the Secure attribute; otherwise it follows the request scheme.
	Secure bool
}

func (c CookieConfig) sessionName() string {
	if c.SessionName == "" {
		return DefaultSessionCookieName
	}
	return c.SessionName
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || isForwardedHTTPS(r)
}

// setSession writes the session cookie so that it expires with the session record.
func (c CookieConfig) setSession(w http.ResponseWriter, r *http.Request, s *domainauth.Session) {
	maxAge := 0
	if !s.ExpiresAt.IsZero() {
		maxAge = int(time.Until(s.ExpiresAt).Seconds())
		if maxAge < 1 {
			maxAge = 1
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.sessionName(),
		Value:    s.ID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clear clears a cookie by setting it to expire immediately, mirroring the
// attributes used when it was set.
func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// isForwardedHTTPS checks if the request was forwarded over HTTPS.
// Handles comma-separated values in X-Forwarded-Proto header.
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
