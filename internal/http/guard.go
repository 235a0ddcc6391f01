package httpx

import (
	"net/http"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/service"
)

// GuardState is the outcome of evaluating a route guard.
// Loading is the only non-terminal state; the others are final for the request.
type GuardState int

const (
	GuardLoading GuardState = iota
	GuardAllow
	GuardRedirectLogin
	GuardRedirectRoleHome
)

func (s GuardState) String() string {
	switch s {
	case GuardLoading:
		return "loading"
	case GuardAllow:
		return "allow"
	case GuardRedirectLogin:
		return "redirect_login"
	case GuardRedirectRoleHome:
		return "redirect_role_home"
	default:
		return "unknown"
	}
}

// GuardDecision pairs a state with the navigation target for redirect states.
type GuardDecision struct {
	State  GuardState
	Target string
}

// EvaluateAuthenticated decides whether a shopper may see a page that only
// requires a session. requested is the location to come back to after sign-in.
func EvaluateAuthenticated(res *service.RestoreResult, requested string) GuardDecision {
	if res == nil || res.Loading {
		return GuardDecision{State: GuardLoading}
	}
	if res.Session == nil {
		return GuardDecision{State: GuardRedirectLogin, Target: loginURL(requested)}
	}
	return GuardDecision{State: GuardAllow}
}

// EvaluateRoles extends EvaluateAuthenticated with role membership. A signed-in
// shopper outside the allowed set lands on their own role's home.
func EvaluateRoles(res *service.RestoreResult, requested string, allowed ...domainauth.Role) GuardDecision {
	d := EvaluateAuthenticated(res, requested)
	if d.State != GuardAllow {
		return d
	}
	if !domainauth.HasAnyRole(res.Session, allowed...) {
		return GuardDecision{State: GuardRedirectRoleHome, Target: domainauth.RedirectTargetFor(res.Session.Role)}
	}
	return d
}

// Guards applies guard decisions to HTTP requests.
type Guards struct {
	Cookies CookieConfig
	// Pending renders the loading state; defaults to a bare 503.
	Pending http.HandlerFunc
}

// RequireAuthenticated wraps next with the authenticated-only guard.
func (g Guards) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.apply(w, r, next, EvaluateAuthenticated(restoredFrom(r), redirectPathForRequest(r)))
	})
}

// RequireAnyRole wraps next with the role-restricted guard.
func (g Guards) RequireAnyRole(roles ...domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.apply(w, r, next, EvaluateRoles(restoredFrom(r), redirectPathForRequest(r), roles...))
		})
	}
}

func (g Guards) apply(w http.ResponseWriter, r *http.Request, next http.Handler, d GuardDecision) {
	switch d.State {
	case GuardAllow:
		next.ServeHTTP(w, r)
	case GuardLoading:
		w.Header().Set("Retry-After", "2")
		w.Header().Set("Cache-Control", "no-store")
		if g.Pending != nil {
			g.Pending(w, r)
			return
		}
		http.Error(w, "Chargement de la session…", http.StatusServiceUnavailable)
	case GuardRedirectLogin:
		AddNotice(r.Context(), msgLoginRequired, NoticeInfo)
		g.redirect(w, r, d.Target)
	case GuardRedirectRoleHome:
		AddNotice(r.Context(), msgAccessDenied, NoticeError)
		g.redirect(w, r, d.Target)
	}
}

func (g Guards) redirect(w http.ResponseWriter, r *http.Request, target string) {
	writeFlash(w, r, g.Cookies, stateFrom(r.Context()).takeNotices())
	navigate(w, r, target)
}

func restoredFrom(r *http.Request) *service.RestoreResult {
	st := stateFrom(r.Context())
	if st == nil {
		return &service.RestoreResult{}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.restored
}
