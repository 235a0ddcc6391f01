package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Kind is the failure category of a backend call.
type Kind string

const (
	// KindUnauthorized is a 401 on a request that carried a token: the session expired.
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	// KindNetwork covers requests that produced no response (refused, reset, timeout).
	KindNetwork Kind = "network"
	// KindDomain is any other 4xx: the backend rejected a well-formed request.
	KindDomain Kind = "domain"
)

// Default shopper-facing messages per failure category.
const (
	MsgSessionExpired = "Session expirée. Veuillez vous reconnecter."
	MsgForbidden      = "Accès refusé"
	MsgNotFound       = "Ressource non trouvée"
	MsgServer         = "Erreur serveur. Veuillez réessayer plus tard."
	MsgNetwork        = "Erreur de connexion. Vérifiez votre connexion internet."
	MsgFallback       = "Une erreur est survenue"
)

// messageExpr pulls the human message out of backend error bodies, which use
// either {"message": ...} (Spring error envelope) or {"error": ...}.
const messageExpr = "message || error"

// DefaultMessage returns the generic message shown for a failure category.
func DefaultMessage(k Kind) string {
	switch k {
	case KindUnauthorized:
		return MsgSessionExpired
	case KindForbidden:
		return MsgForbidden
	case KindNotFound:
		return MsgNotFound
	case KindServer:
		return MsgServer
	case KindNetwork:
		return MsgNetwork
	default:
		return MsgFallback
	}
}

// Error is a classified backend failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend %s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// MetricClass tags metrics with the failure category.
func (e *Error) MetricClass() string { return "backend_" + string(e.Kind) }

// UserMessage is what a screen shows: the backend message for domain
// failures, the category default otherwise.
func (e *Error) UserMessage() string {
	if e.Kind == KindDomain {
		if e.Message != "" {
			return e.Message
		}
		return MsgFallback
	}
	return DefaultMessage(e.Kind)
}

// AsError extracts a classified backend error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is a backend error of the given category.
func IsKind(err error, k Kind) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == k
}

// UserMessage returns the shopper-facing message for any error.
func UserMessage(err error) string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.UserMessage()
	}
	return MsgFallback
}

// classifyStatus maps an HTTP failure status to a Kind. A 401 only means an
// expired session when a token was sent; on credential submission it is a
// domain failure ("bad credentials").
func classifyStatus(status int, hadToken bool) Kind {
	switch {
	case status == http.StatusUnauthorized && hadToken:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindDomain
	}
}

// extractMessage evaluates messageExpr against a JSON error body.
// Non-JSON bodies yield their trimmed text when short.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		if len(trimmed) <= 200 && !strings.HasPrefix(trimmed, "<") {
			return trimmed
		}
		return ""
	}
	res, err := jmespath.Search(messageExpr, doc)
	if err != nil {
		return ""
	}
	if s, ok := res.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
