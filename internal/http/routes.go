package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	storefront "github.com/target/parapharmacie-storefront"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions   SessionManager    // Required
	Carts      CartManager       // Required
	Catalog    CatalogReader     // Required
	Orders     OrderManager      // Required
	Backoffice BackofficeManager // Required
	Cookies    CookieConfig
	// HealthChecks back /readyz, keyed by dependency name.
	HealthChecks map[string]HealthChecker
	// TemplateFS overrides where templates are loaded from (tests).
	TemplateFS         fs.FS
	FeaturedProducts   int
	CompressionEnabled bool
	CompressionLevel   int
	IsDev              bool         // Development mode flag for hot reloading, etc.
	Logger             *slog.Logger // Logger for template and HTTP errors (optional)
}

func (s RouterServices) validate() error {
	if s.Sessions == nil || s.Carts == nil || s.Catalog == nil || s.Orders == nil || s.Backoffice == nil {
		return errors.New("router requires session, cart, catalog, order and backoffice services")
	}
	return nil
}

// NewRouter creates the storefront handler with the full browser middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if err := services.validate(); err != nil {
		return nil, err
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ui, err := setupUIHandlers(services, logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.HealthChecks))
	mux.HandleFunc("GET /session/status", ui.SessionStatus)

	// Static assets at /static
	// Dev mode: serve from disk for hot reloading
	// Prod mode: serve from embedded FS
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	guards := Guards{Cookies: services.Cookies, Pending: ui.Pending}
	registerUIRoutes(mux, ui, guards)

	var handler http.Handler = &notFoundHandler{mux: mux, ui: ui, logger: logger}
	chain := []func(http.Handler) http.Handler{
		RequestID(),
		Recover(logger),
		Logging(logger),
		SecurityHeaders(),
	}
	if services.CompressionEnabled {
		chain = append(chain, Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger}))
	}
	chain = append(chain,
		CSRFProtection(CSRFConfig{Cookies: services.Cookies}),
		LoadSession(services.Sessions, services.Cookies, logger),
	)
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler, nil
}

// setupUIHandlers creates UI handlers with the template renderer.
// In dev mode templates are loaded from disk for hot reloading, otherwise from the embedded FS.
func setupUIHandlers(services RouterServices, logger *slog.Logger) (*UIHandlers, error) {
	templateFS := services.TemplateFS
	if templateFS == nil {
		templateFS = templateSource(services.IsDev, logger)
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	return &UIHandlers{
		T:                tr,
		Sessions:         services.Sessions,
		Carts:            services.Carts,
		Catalog:          services.Catalog,
		Orders:           services.Orders,
		Backoffice:       services.Backoffice,
		Cookies:          services.Cookies,
		FeaturedProducts: services.FeaturedProducts,
		IsDev:            services.IsDev,
		Logger:           logger,
	}, nil
}

func templateSource(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(storefront.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("embedded templates unavailable, falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	sub, err := fs.Sub(storefront.StaticFS, StaticPathFromRoot)
	if err != nil {
		logger.Warn("embedded static assets unavailable, falling back to disk", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))), true)
}

// staticWithCacheHeaders adds cache headers: short-lived for embedded assets, none in dev.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and renders the storefront 404 page.
type notFoundHandler struct {
	mux    *http.ServeMux
	ui     *UIHandlers
	logger *slog.Logger
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/static/") {
		http.NotFound(w, r)
		return
	}
	// Unmatched requests still go through the mux so 405 and canonical-path
	// redirects keep their answers; only a plain 404 gets the storefront page.
	cw := &captureWriter{header: make(http.Header), status: http.StatusOK}
	h.mux.ServeHTTP(cw, r)
	if cw.status != http.StatusNotFound {
		cw.flushTo(w, h.logger)
		return
	}
	h.ui.NotFound(w, r)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter, logger *slog.Logger) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		logger.Debug("failed to write captured response", "error", err)
	}
}

// registerUIRoutes delegates to per-area route registration functions.
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, g Guards) {
	registerPublicRoutes(mux, h)
	registerShopRoutes(mux, h, g)
	registerManagerRoutes(mux, h, g)
	registerAdminRoutes(mux, h, g)
}

// registerPublicRoutes wires pages reachable without signing in.
func registerPublicRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /contact", h.Contact)
	mux.HandleFunc("POST /contact", h.ContactSubmit)
	mux.HandleFunc("GET /login", h.Login)
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.HandleFunc("GET /register", h.Register)
	mux.HandleFunc("POST /register", h.RegisterSubmit)
	mux.HandleFunc("POST /logout", h.Logout)
}

// registerShopRoutes wires catalog, cart and order pages for signed-in shoppers.
func registerShopRoutes(mux *http.ServeMux, h *UIHandlers, g Guards) {
	wrap := g.RequireAuthenticated
	mux.Handle("GET /products", wrap(http.HandlerFunc(h.Products)))
	mux.Handle("GET /products/{id}", wrap(http.HandlerFunc(h.ProductDetail)))

	mux.Handle("GET /cart", wrap(http.HandlerFunc(h.Cart)))
	mux.Handle("POST /cart/items", wrap(http.HandlerFunc(h.CartAdd)))
	mux.Handle("POST /cart/items/{id}", wrap(http.HandlerFunc(h.CartUpdate)))
	mux.Handle("POST /cart/items/{id}/delete", wrap(http.HandlerFunc(h.CartRemove)))
	mux.Handle("POST /cart/clear", wrap(http.HandlerFunc(h.CartClear)))
	mux.Handle("POST /cart/validate", wrap(http.HandlerFunc(h.CartValidate)))
	mux.Handle("POST /checkout", wrap(http.HandlerFunc(h.Checkout)))

	mux.Handle("GET /orders", wrap(http.HandlerFunc(h.OrderList)))
	mux.Handle("GET /orders/{id}", wrap(http.HandlerFunc(h.OrderDetail)))
	mux.Handle("POST /orders/{id}/cancel", wrap(http.HandlerFunc(h.OrderCancel)))
}

// registerManagerRoutes wires the manager console, open to managers and admins.
func registerManagerRoutes(mux *http.ServeMux, h *UIHandlers, g Guards) {
	wrap := g.RequireAnyRole(domainauth.RoleManager, domainauth.RoleAdmin)
	mux.Handle("GET /manager", wrap(http.HandlerFunc(h.Manager)))
	mux.Handle("POST /manager/orders/{id}/status", wrap(http.HandlerFunc(h.ManagerOrderStatus)))
	mux.Handle("GET /manager/products/new", wrap(http.HandlerFunc(h.ManagerProductNew)))
	mux.Handle("POST /manager/products", wrap(http.HandlerFunc(h.ManagerProductCreate)))
	mux.Handle("GET /manager/products/{id}/edit", wrap(http.HandlerFunc(h.ManagerProductEdit)))
	mux.Handle("POST /manager/products/{id}", wrap(http.HandlerFunc(h.ManagerProductUpdate)))
	mux.Handle("POST /manager/products/{id}/stock", wrap(http.HandlerFunc(h.ManagerProductStock)))
}

// registerAdminRoutes wires the admin console.
func registerAdminRoutes(mux *http.ServeMux, h *UIHandlers, g Guards) {
	wrap := g.RequireAnyRole(domainauth.RoleAdmin)
	mux.Handle("GET /admin", wrap(http.HandlerFunc(h.Admin)))
	mux.Handle("POST /admin/users", wrap(http.HandlerFunc(h.AdminUserCreate)))
	mux.Handle("POST /admin/users/{id}/role", wrap(http.HandlerFunc(h.AdminUserRole)))
	mux.Handle("POST /admin/users/{id}/enabled", wrap(http.HandlerFunc(h.AdminUserEnabled)))
	mux.Handle("POST /admin/users/{id}/delete", wrap(http.HandlerFunc(h.AdminUserDelete)))
	mux.Handle("POST /admin/products/{id}/delete", wrap(http.HandlerFunc(h.AdminProductDelete)))
	mux.Handle("POST /admin/orders/{id}/status", wrap(http.HandlerFunc(h.AdminOrderStatus)))
}
