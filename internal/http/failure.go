package httpx

import (
	"context"
	"log/slog"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	"github.com/target/parapharmacie-storefront/internal/http/ui/viewmodel"
)

const (
	msgLoginRequired = "Veuillez vous connecter pour continuer."
	msgAccessDenied  = apiclient.MsgForbidden
)

// SessionInvalidator drops a session that the backend no longer accepts.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}

// FailureReactor is the one place backend failures turn into shopper-visible
// effects. Authorization failures erase the session and flag the request for
// a sign-in redirect; every failure leaves a notice on the request.
type FailureReactor struct {
	Sessions SessionInvalidator
	Logger   *slog.Logger
}

var _ apiclient.FailureHandler = (*FailureReactor)(nil)

// HandleFailure implements apiclient.FailureHandler.
func (f *FailureReactor) HandleFailure(ctx context.Context, err *apiclient.Error) {
	st := stateFrom(ctx)
	if st == nil {
		// Background callers (catalog warmer) have no shopper to notify.
		f.logger().DebugContext(ctx, "backend failure outside a request", "kind", string(err.Kind), "path", err.Path)
		return
	}

	if err.Kind == apiclient.KindUnauthorized {
		if st.sessionID != "" && f.Sessions != nil {
			if invErr := f.Sessions.Invalidate(context.WithoutCancel(ctx), st.sessionID); invErr != nil {
				f.logger().WarnContext(ctx, "invalidate session after 401 failed",
					"error", invErr, "request_id", RequestIDFrom(ctx))
			}
		}
		st.dropSession()
	}

	st.addNotice(noticeFor(err))
}

func noticeFor(err *apiclient.Error) viewmodel.Notice {
	return viewmodel.Notice{Message: err.UserMessage(), Type: NoticeError}
}

func (f *FailureReactor) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
