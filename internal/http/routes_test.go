package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/testutil"
)

const testCSRF = "csrf-test-token"

type routerFixture struct {
	handler  http.Handler
	sessions *fakeSessions
	carts    *fakeCarts
	catalog  *fakeCatalog
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		sessions: newFakeSessions(),
		carts: &fakeCarts{cart: model.NewCart([]model.CartItem{
			{ID: 7, Product: model.Product{ID: 1, Name: "Crème hydratante", Price: decimal.RequireFromString("12.50"), Available: true, StockQuantity: 30}, Quantity: 2},
		}, decimal.Zero)},
		catalog: &fakeCatalog{products: []model.Product{
			{ID: 1, Name: "Crème hydratante", Price: decimal.RequireFromString("12.50"), Category: model.CategoryFaceSkinCare, Available: true, StockQuantity: 30},
			{ID: 2, Name: "Vitamine C", Price: decimal.RequireFromString("8.90"), Category: model.CategorySupplements, Available: true, StockQuantity: 4},
		}},
	}
	h, err := NewRouter(RouterServices{
		Sessions:   f.sessions,
		Carts:      f.carts,
		Catalog:    f.catalog,
		Orders:     &fakeOrders{},
		Backoffice: fakeBackoffice{},
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     testutil.SilentLogger(),
	})
	require.NoError(t, err)
	f.handler = h
	return f
}

func (f *routerFixture) get(path, sessionID string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: sessionID})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) post(path, sessionID string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, testCSRF)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRF})
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// flashMessages decodes the notices a redirect carries to the next page.
func flashMessages(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	c := cookieFrom(rec, flashCookieName)
	if c == nil {
		return nil
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	var out []string
	for _, n := range readFlash(httptest.NewRecorder(), req, CookieConfig{}) {
		out = append(out, n.Message)
	}
	return out
}

func TestNewRouter_RequiresServices(t *testing.T) {
	_, err := NewRouter(RouterServices{})
	require.Error(t, err)
}

func TestRouter_PublicPages(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/", "/about", "/contact", "/login", "/register", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			rec := f.get(path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	rec := f.get("/", "", nil)
	assert.Contains(t, rec.Body.String(), "Crème hydratante")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_GuestIsSentToLoginWithReturnPath(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/cart", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fcart", rec.Header().Get("Location"))
	assert.NotNil(t, cookieFrom(rec, flashCookieName), "login notice travels in the flash cookie")

	rec = f.get("/cart", "", map[string]string{"Hx-Request": "true"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fcart", rec.Header().Get("Hx-Redirect"))
}

func TestRouter_LoginReturnsToRequestedPage(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.accounts["amina@example.com"] = domainauth.RoleUser

	rec := f.post("/login", "", url.Values{
		"email":        {"amina@example.com"},
		"password":     {"secret123"},
		"redirect_uri": {"/cart"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))

	sessionCookie := cookieFrom(rec, DefaultSessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)

	rec = f.get("/cart", sessionCookie.Value, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Crème hydratante")
}

func TestRouter_LoginLandsOnRoleHome(t *testing.T) {
	tests := []struct {
		role domainauth.Role
		want string
	}{
		{domainauth.RoleUser, "/products"},
		{domainauth.RoleManager, "/manager"},
		{domainauth.RoleAdmin, "/admin"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			f := newRouterFixture(t)
			f.sessions.accounts["who@example.com"] = tt.role

			rec := f.post("/login", "", url.Values{"email": {"who@example.com"}, "password": {"secret123"}})
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestRouter_BadCredentialsStayOnForm(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.post("/login", "", url.Values{"email": {"nobody@example.com"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), msgBadLogin)
	assert.Nil(t, cookieFrom(rec, DefaultSessionCookieName))
}

func TestRouter_PostWithoutCSRFIsRejected(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.fr&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_RoleGuards(t *testing.T) {
	tests := []struct {
		name     string
		role     domainauth.Role
		path     string
		wantCode int
		wantLoc  string
	}{
		{"shopper on admin console", domainauth.RoleUser, "/admin", http.StatusSeeOther, "/products"},
		{"shopper on manager console", domainauth.RoleUser, "/manager", http.StatusSeeOther, "/products"},
		{"manager on admin console", domainauth.RoleManager, "/admin", http.StatusSeeOther, "/manager"},
		{"manager on manager console", domainauth.RoleManager, "/manager", http.StatusOK, ""},
		{"admin on manager console", domainauth.RoleAdmin, "/manager", http.StatusOK, ""},
		{"admin on admin console", domainauth.RoleAdmin, "/admin", http.StatusOK, ""},
		{"shopper on products", domainauth.RoleUser, "/products", http.StatusOK, ""},
		{"shopper on orders", domainauth.RoleUser, "/orders", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.sessions.add("s1", tt.role)

			rec := f.get(tt.path, "s1", nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRouter_StoreOutageRendersLoading(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.restoreErr = errStoreDown

	rec := f.get("/cart", "s1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRouter_UnknownSessionCookieIsCleared(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/about", "stale", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	c := cookieFrom(rec, DefaultSessionCookieName)
	require.NotNil(t, c)
	assert.Equal(t, "", c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestRouter_SessionStatus(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleManager)

	rec := f.get("/session/status", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "manager", body["role"])
	assert.InDelta(t, 2, body["cart_count"], 0)

	rec = f.get("/session/status", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.get("/no-such-page", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = f.post("/about", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_InvalidCategoryRedirects(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleUser)

	rec := f.get("/products?category=Parfums", "s1", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))

	rec = f.get("/products?category="+url.QueryEscape(string(model.CategorySupplements)), "s1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vitamine C")
}

func TestRouter_AddToCartRedirectsBack(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleUser)

	rec := f.post("/cart/items", "s1", url.Values{"product_id": {"2"}, "quantity": {"1"}, "back": {"/products/2"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products/2", rec.Header().Get("Location"))
	assert.Equal(t, []int64{2}, f.carts.added)
}

func TestRouter_HTMXPartialCarriesToast(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleUser)
	f.carts.loadErr = errStoreDown

	rec := f.get("/cart", "s1", map[string]string{"Hx-Request": "true"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "showToast")
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestRouter_CartUpdateRejectsQuantityBelowOne(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleUser)

	for _, q := range []string{"0", "-2", "abc"} {
		t.Run(q, func(t *testing.T) {
			rec := f.post("/cart/items/7", "s1", url.Values{"quantity": {q}})
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, PathCart, rec.Header().Get("Location"))
			assert.Contains(t, flashMessages(t, rec), msgBadQuantity)
		})
	}
	assert.Empty(t, f.carts.removed, "a zero quantity is never a removal")
	assert.Empty(t, f.carts.updated)
}

func TestRouter_CartUpdateStockBound(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		quantity string
		want     []int
	}{
		{"within stock", 30, "5", []int{5}},
		{"exactly stock", 30, "30", []int{30}},
		{"above stock", 30, "999", nil},
		{"lowering a line above shrunken stock", 1, "1", []int{1}},
		{"raising a line above shrunken stock", 1, "3", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.sessions.add("s1", domainauth.RoleUser)
			f.carts.cart.Items[0].Product.StockQuantity = tt.stock

			rec := f.post("/cart/items/7", "s1", url.Values{"quantity": {tt.quantity}})
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, f.carts.updated)
			if tt.want == nil {
				assert.Contains(t, flashMessages(t, rec), msgOverStock(tt.stock))
			}
		})
	}
}

func TestRouter_CartUpdateUnknownLine(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleUser)

	rec := f.post("/cart/items/99", "s1", url.Values{"quantity": {"1"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, flashMessages(t, rec), msgUnknownItem)
	assert.Empty(t, f.carts.updated)
}

func TestRouter_CartAddStockBound(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  string
		wantAdded []int64
		wantMsg   string
	}{
		{"within stock", "2", "4", []int64{2}, msgAddedToCart},
		{"above stock", "2", "5", nil, msgOverStock(4)},
		{"counts units already in cart", "1", "29", nil, msgOverStock(28)},
		{"unknown product", "42", "1", nil, msgUnknownProduct},
		{"out of stock", "3", "1", nil, msgOutOfStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.sessions.add("s1", domainauth.RoleUser)
			f.catalog.products = append(f.catalog.products, model.Product{ID: 3, Name: "Gel douche", Available: true})

			rec := f.post("/cart/items", "s1", url.Values{"product_id": {tt.productID}, "quantity": {tt.quantity}, "back": {"/products"}})
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/products", rec.Header().Get("Location"))
			assert.Equal(t, tt.wantAdded, f.carts.added)
			assert.Equal(t, []string{tt.wantMsg}, flashMessages(t, rec))
		})
	}
}

func TestRouter_ExpiredTokenDuringScreenSendsToLogin(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.add("s1", domainauth.RoleUser)
	reactor := &FailureReactor{Sessions: f.sessions, Logger: testutil.SilentLogger()}
	f.carts.onLoad = func(ctx context.Context) error {
		apiErr := &apiclient.Error{Kind: apiclient.KindUnauthorized, Status: http.StatusUnauthorized, Method: http.MethodGet, Path: "/cart"}
		reactor.HandleFailure(ctx, apiErr)
		return apiErr
	}

	rec := f.get("/cart", "s1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fcart", rec.Header().Get("Location"))

	cleared := cookieFrom(rec, DefaultSessionCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.Equal(t, []string{"s1"}, f.sessions.invalidated)
	assert.Contains(t, flashMessages(t, rec), apiclient.MsgSessionExpired)

	// The erased session no longer opens protected pages.
	rec = f.get("/cart", "s1", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fcart", rec.Header().Get("Location"))
}
