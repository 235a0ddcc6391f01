package httpx

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/service"
)

// fakeSessions keeps sessions in memory keyed by session ID.
type fakeSessions struct {
	mu          sync.Mutex
	sessions    map[string]*domainauth.Session
	accounts    map[string]domainauth.Role // email -> role; password is always "secret123"
	restoreErr  error
	invalidated []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions: map[string]*domainauth.Session{},
		accounts: map[string]domainauth.Role{},
	}
}

func (f *fakeSessions) add(id string, role domainauth.Role) *domainauth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &domainauth.Session{ID: id, Token: "tok-" + id, Name: "Test " + string(role), Email: id + "@example.com", Role: role}
	f.sessions[id] = s
	return s
}

func (f *fakeSessions) Restore(_ context.Context, id string) (*service.RestoreResult, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &service.RestoreResult{Session: f.sessions[id]}, nil
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (*domainauth.Session, error) {
	f.mu.Lock()
	role, ok := f.accounts[email]
	f.mu.Unlock()
	if !ok || password != "secret123" {
		return nil, &apiclient.Error{Kind: apiclient.KindDomain, Status: http.StatusUnauthorized, Path: "/auth/login"}
	}
	return f.add("login-"+string(role), role), nil
}

func (f *fakeSessions) Register(_ context.Context, req model.RegisterRequest) (*domainauth.Session, error) {
	return f.add("reg-"+req.Email, domainauth.RoleUser), nil
}

func (f *fakeSessions) Logout(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) Invalidate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, id)
	delete(f.sessions, id)
	return nil
}

// fakeCarts serves one fixed cart and records every mutation it receives.
type fakeCarts struct {
	cart    model.Cart
	loadErr error
	// onLoad stands in for the backend call behind Load.
	onLoad  func(ctx context.Context) error
	added   []int64
	updated []int
	removed []int64
}

func (f *fakeCarts) Snapshot(context.Context, *domainauth.Session) (model.Cart, error) { return f.cart, nil }

func (f *fakeCarts) Load(ctx context.Context, _ *domainauth.Session) (model.Cart, error) {
	if f.onLoad != nil {
		if err := f.onLoad(ctx); err != nil {
			return model.EmptyCart(), err
		}
	}
	if f.loadErr != nil {
		return model.EmptyCart(), f.loadErr
	}
	return f.cart, nil
}

func (f *fakeCarts) AddItem(_ context.Context, _ *domainauth.Session, productID int64, _ int) (model.Cart, error) {
	f.added = append(f.added, productID)
	return f.cart, nil
}

func (f *fakeCarts) UpdateItem(_ context.Context, _ *domainauth.Session, _ int64, quantity int) (model.Cart, error) {
	f.updated = append(f.updated, quantity)
	return f.cart, nil
}

func (f *fakeCarts) RemoveItem(_ context.Context, _ *domainauth.Session, itemID int64) (model.Cart, error) {
	f.removed = append(f.removed, itemID)
	return f.cart, nil
}

func (f *fakeCarts) Clear(context.Context, *domainauth.Session) (model.Cart, error) {
	return model.EmptyCart(), nil
}

func (f *fakeCarts) Validate(context.Context, *domainauth.Session) (model.CartValidation, error) {
	return model.CartValidation{Valid: true}, nil
}

// fakeCatalog serves a fixed product list.
type fakeCatalog struct {
	products []model.Product
}

func (f *fakeCatalog) Products(_ context.Context, q service.ProductQuery) ([]model.Product, error) {
	if q.Category == "" {
		return f.products, nil
	}
	var out []model.Product
	for _, p := range f.products {
		if p.Category == q.Category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Featured(_ context.Context, n int) ([]model.Product, error) {
	if n < len(f.products) {
		return f.products[:n], nil
	}
	return f.products, nil
}

func (f *fakeCatalog) Categories(context.Context) ([]model.Category, error) { return model.Categories(), nil }

func (f *fakeCatalog) Product(_ context.Context, id int64) (model.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, &apiclient.Error{Kind: apiclient.KindNotFound, Status: http.StatusNotFound}
}

func (f *fakeCatalog) CheckAvailability(_ context.Context, id int64, quantity int) (model.Availability, error) {
	return model.Availability{ProductID: id, Quantity: quantity, Available: true}, nil
}

// fakeOrders implements only what the tests reach; other calls panic through the nil interface.
type fakeOrders struct {
	OrderManager
	page model.OrderPage
}

func (f *fakeOrders) MyOrders(context.Context, *domainauth.Session, int, int) (model.OrderPage, error) {
	return f.page, nil
}

func (f *fakeOrders) Stats(context.Context, *domainauth.Session) (model.OrderStats, error) {
	return model.OrderStats{TotalOrders: int64(len(f.page.Orders)), TotalAmount: decimal.Zero}, nil
}

type fakeBackoffice struct {
	BackofficeManager
}

func (fakeBackoffice) ManagerDashboard(context.Context, *domainauth.Session) (*service.ManagerDashboard, error) {
	return &service.ManagerDashboard{}, nil
}

func (fakeBackoffice) AdminDashboard(_ context.Context, _ *domainauth.Session, status model.OrderStatus) (*service.AdminDashboard, error) {
	return &service.AdminDashboard{StatusFilter: status}, nil
}

var errStoreDown = errors.New("redis: connection refused")
