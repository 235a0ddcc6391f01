package ports

import (
	"context"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

// The backend ports read the bearer token from the context (see apiclient.WithToken).

// AuthAPI covers the remote authentication endpoints.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Logout(ctx context.Context) error
	// Validate reports whether the backend still accepts the token.
	Validate(ctx context.Context, token string) (bool, error)
}

// CatalogAPI covers the public product endpoints.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ProductsByCategory(ctx context.Context, category model.Category) ([]model.Product, error)
	SearchProducts(ctx context.Context, name string) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	CheckAvailability(ctx context.Context, productID int64, quantity int) (model.Availability, error)
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)
	OutOfStock(ctx context.Context) ([]model.Product, error)
}

// CartAPI covers the server-side cart of the signed-in shopper.
type CartAPI interface {
	GetCart(ctx context.Context) (model.Cart, error)
	AddItem(ctx context.Context, productID int64, quantity int) (model.Cart, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int) (model.Cart, error)
	RemoveItem(ctx context.Context, itemID int64) (model.Cart, error)
	ClearCart(ctx context.Context) error
	CartCount(ctx context.Context) (int, error)
	ValidateCart(ctx context.Context) (model.CartValidation, error)
}

// OrderAPI covers the shopper's orders plus admin-wide listings.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrdersPage(ctx context.Context, page, size int) (model.OrderPage, error)
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	CancelOrder(ctx context.Context, id int64) (model.Order, error)
	OrderStats(ctx context.Context) (model.OrderStats, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	OrdersByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	RecentOrders(ctx context.Context) ([]model.Order, error)
	AdminUpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (model.Order, error)
}

// ManagerAPI covers the manager console endpoints.
type ManagerAPI interface {
	ManagerOrders(ctx context.Context) ([]model.Order, error)
	ManagerUpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (model.Order, error)
	CreateProduct(ctx context.Context, in model.ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (model.Product, error)
	UpdateStock(ctx context.Context, id int64, stock int) (model.Product, error)
}

// AdminAPI covers the admin console endpoints.
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	UpdateUserRole(ctx context.Context, id int64, role string) (model.User, error)
	SetUserEnabled(ctx context.Context, id int64, enabled bool) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	DeleteProduct(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (model.Statistics, error)
}

// Backend bundles every remote API port.
type Backend interface {
	AuthAPI
	CatalogAPI
	CartAPI
	OrderAPI
	ManagerAPI
	AdminAPI
}
