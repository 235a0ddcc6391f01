package httpx

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/service"
)

const errMsgFixBelow = "Veuillez corriger les erreurs ci-dessous."

// SessionManager is the session slice the screens need.
type SessionManager interface {
	SessionRestorer
	SessionInvalidator
	Login(ctx context.Context, email, password string) (*domainauth.Session, error)
	Register(ctx context.Context, req model.RegisterRequest) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// CartManager is the cart slice the screens need.
type CartManager interface {
	Snapshot(ctx context.Context, sess *domainauth.Session) (model.Cart, error)
	Load(ctx context.Context, sess *domainauth.Session) (model.Cart, error)
	AddItem(ctx context.Context, sess *domainauth.Session, productID int64, quantity int) (model.Cart, error)
	UpdateItem(ctx context.Context, sess *domainauth.Session, itemID int64, quantity int) (model.Cart, error)
	RemoveItem(ctx context.Context, sess *domainauth.Session, itemID int64) (model.Cart, error)
	Clear(ctx context.Context, sess *domainauth.Session) (model.Cart, error)
	Validate(ctx context.Context, sess *domainauth.Session) (model.CartValidation, error)
}

// CatalogReader is the catalog slice the screens need.
type CatalogReader interface {
	Products(ctx context.Context, q service.ProductQuery) ([]model.Product, error)
	Featured(ctx context.Context, n int) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Product(ctx context.Context, id int64) (model.Product, error)
	CheckAvailability(ctx context.Context, id int64, quantity int) (model.Availability, error)
}

// OrderManager is the order slice the screens need.
type OrderManager interface {
	Checkout(ctx context.Context, sess *domainauth.Session, in service.CheckoutInput) (model.Order, error)
	MyOrders(ctx context.Context, sess *domainauth.Session, page, size int) (model.OrderPage, error)
	Order(ctx context.Context, sess *domainauth.Session, id int64) (model.Order, error)
	Cancel(ctx context.Context, sess *domainauth.Session, id int64) (model.Order, error)
	Stats(ctx context.Context, sess *domainauth.Session) (model.OrderStats, error)
}

// BackofficeManager is the manager and admin console slice the screens need.
type BackofficeManager interface {
	ManagerDashboard(ctx context.Context, sess *domainauth.Session) (*service.ManagerDashboard, error)
	AdminDashboard(ctx context.Context, sess *domainauth.Session, status model.OrderStatus) (*service.AdminDashboard, error)
	SetOrderStatus(ctx context.Context, sess *domainauth.Session, id int64, status model.OrderStatus) (model.Order, error)
	CreateProduct(ctx context.Context, sess *domainauth.Session, in model.ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, sess *domainauth.Session, id int64, in model.ProductInput) (model.Product, error)
	UpdateStock(ctx context.Context, sess *domainauth.Session, id int64, stock int) (model.Product, error)
	DeleteProduct(ctx context.Context, sess *domainauth.Session, id int64) error
	CreateUser(ctx context.Context, sess *domainauth.Session, req model.CreateUserRequest) (model.User, error)
	SetUserRole(ctx context.Context, sess *domainauth.Session, id int64, role domainauth.Role) (model.User, error)
	SetUserEnabled(ctx context.Context, sess *domainauth.Session, id int64, enabled bool) (model.User, error)
	DeleteUser(ctx context.Context, sess *domainauth.Session, id int64) error
}

// Compile-time interface assertions to ensure concrete services satisfy their UI interfaces.
var (
	_ SessionManager    = (*service.SessionService)(nil)
	_ CartManager       = (*service.CartService)(nil)
	_ CatalogReader     = (*service.CatalogService)(nil)
	_ OrderManager      = (*service.OrderService)(nil)
	_ BackofficeManager = (*service.BackofficeService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T          *TemplateRenderer
	Sessions   SessionManager
	Carts      CartManager
	Catalog    CatalogReader
	Orders     OrderManager
	Backoffice BackofficeManager
	Cookies    CookieConfig
	// FeaturedProducts is how many products the home page shows.
	FeaturedProducts int
	IsDev            bool // Development mode flag for enhanced error reporting
	Logger           *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// pageData builds base data for r including the cart badge count.
func (h *UIHandlers) pageData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	b := NewTemplateData(r, meta)
	if sess := GetSessionFromContext(r.Context()); sess != nil && h.Carts != nil {
		cart, err := h.Carts.Snapshot(r.Context(), sess)
		if err != nil {
			h.logger().DebugContext(r.Context(), "cart badge unavailable", "error", err)
		}
		b.With("CartCount", cart.ItemCount)
	}
	return b
}

// render writes a page: the full layout for plain requests, the content
// fragment plus a toast trigger for htmx requests.
func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	st := stateFrom(r.Context())
	if st.needsReauth() {
		h.toLogin(w, r)
		return
	}
	notices := st.takeNotices()
	data["Notices"] = notices

	page, _ := data["CurrentPage"].(string)
	if !WantsPartial(r) {
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
		}
		if err := h.T.RenderFull(w, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	triggerToast(w, notices)
	title, _ := data["Title"].(string)
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}
	if err := h.T.RenderContent(w, page, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// redirect carries pending notices across a navigation.
func (h *UIHandlers) redirect(w http.ResponseWriter, r *http.Request, target string) {
	writeFlash(w, r, h.Cookies, stateFrom(r.Context()).takeNotices())
	navigate(w, r, target)
}

func (h *UIHandlers) toLogin(w http.ResponseWriter, r *http.Request) {
	h.Cookies.clear(w, r, h.Cookies.sessionName())
	h.redirect(w, r, loginURL(redirectPathForRequest(r)))
}

// handleAuthError turns authorization failures into the matching navigation
// and reports whether it wrote a response.
func (h *UIHandlers) handleAuthError(w http.ResponseWriter, r *http.Request, err error) bool {
	st := stateFrom(r.Context())
	switch {
	case st.needsReauth():
		h.toLogin(w, r)
		return true
	case apperrors.IsUnauthorized(err):
		AddNotice(r.Context(), msgLoginRequired, NoticeInfo)
		h.toLogin(w, r)
		return true
	case apperrors.IsForbidden(err) || apiclient.IsKind(err, apiclient.KindForbidden):
		AddNotice(r.Context(), msgAccessDenied, NoticeError)
		target := PathHome
		if sess := GetSessionFromContext(r.Context()); sess != nil {
			target = domainauth.RedirectTargetFor(sess.Role)
		}
		h.redirect(w, r, target)
		return true
	}
	return false
}

// notifyError records err as a notice (backend failures already carry one) and logs it.
func (h *UIHandlers) notifyError(r *http.Request, err error, op string) string {
	msg := errorMessage(err)
	if _, ok := apiclient.AsError(err); !ok {
		AddNotice(r.Context(), msg, NoticeError)
	}
	level := slog.LevelWarn
	if apperrors.IsValidation(err) || apperrors.IsConflict(err) || apiclient.IsKind(err, apiclient.KindDomain) {
		level = slog.LevelInfo
	}
	h.logger().Log(r.Context(), level, "request failed",
		"op", op, "error", err, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()))
	return msg
}

// actionFailed handles a failed POST that redirects back on both outcomes.
func (h *UIHandlers) actionFailed(w http.ResponseWriter, r *http.Request, err error, op, back string) {
	if h.handleAuthError(w, r, err) {
		return
	}
	h.notifyError(r, err, op)
	h.redirect(w, r, back)
}

// errorMessage maps any error to the shopper-facing text.
func errorMessage(err error) string {
	if apiErr, ok := apiclient.AsError(err); ok {
		return apiErr.UserMessage()
	}
	var appErr *apperrors.AppError
	if errors.As(apperrors.MapContextError(err), &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return apiclient.MsgFallback
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, PageMeta{Title: "Page introuvable", CurrentPage: PageNotFound}).Build()
	h.render(w, r, http.StatusNotFound, data)
}

// Pending renders the session-loading state used by the guards.
func (h *UIHandlers) Pending(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, PageMeta{Title: "Chargement…", CurrentPage: PageLoading}).
		With("RetryURL", r.URL.RequestURI()).Build()
	h.render(w, r, http.StatusServiceUnavailable, data)
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<pre class="template-error">` +
			html.EscapeString(context+": "+err.Error()) + `</pre>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
