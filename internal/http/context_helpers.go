package httpx

import (
	"context"
	"sync"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/http/ui/viewmodel"
	"github.com/target/parapharmacie-storefront/internal/service"
)

// requestStateKey is an unexported context key type to avoid collisions across packages.
type requestStateKey struct{}

// requestState is the per-request view of the shopper session plus the
// notices raised while serving it. The failure handler may write to it from
// errgroup goroutines, so access goes through the mutex.
type requestState struct {
	mu        sync.Mutex
	sessionID string
	restored  *service.RestoreResult
	notices   []viewmodel.Notice
	reauth    bool
}

func withRequestState(ctx context.Context, st *requestState) context.Context {
	return context.WithValue(ctx, requestStateKey{}, st)
}

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(requestStateKey{}).(*requestState)
	return st
}

func (st *requestState) session() *domainauth.Session {
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.restored == nil || st.restored.Loading {
		return nil
	}
	return st.restored.Session
}

func (st *requestState) loading() bool {
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.restored != nil && st.restored.Loading
}

func (st *requestState) addNotice(n viewmodel.Notice) {
	if st == nil || n.Message == "" {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, existing := range st.notices {
		if existing == n {
			return
		}
	}
	st.notices = append(st.notices, n)
}

func (st *requestState) takeNotices() []viewmodel.Notice {
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	out := st.notices
	st.notices = nil
	return out
}

// dropSession forgets the identity for the rest of the request and flags
// that the shopper must sign in again.
func (st *requestState) dropSession() {
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.restored = &service.RestoreResult{}
	st.reauth = true
}

func (st *requestState) needsReauth() bool {
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.reauth
}

// SetSessionInContext returns a child context that carries the given session.
// Used by tests and background callers that bypass the session middleware.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	st := &requestState{restored: &service.RestoreResult{Session: session}}
	if session != nil {
		st.sessionID = session.ID
	}
	return withRequestState(ctx, st)
}

// GetSessionFromContext retrieves the restored session, or nil when the request is anonymous.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	return stateFrom(ctx).session()
}

// IsGuestUser reports whether the current request context is unauthenticated.
func IsGuestUser(ctx context.Context) bool {
	return GetSessionFromContext(ctx) == nil
}

// AddNotice queues a notice for the response being built.
func AddNotice(ctx context.Context, message, kind string) {
	stateFrom(ctx).addNotice(viewmodel.Notice{Message: message, Type: kind})
}

// sessionIDFrom returns the session identifier carried by the request cookie.
func sessionIDFrom(ctx context.Context) string {
	st := stateFrom(ctx)
	if st == nil {
		return ""
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessionID
}
