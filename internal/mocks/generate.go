// Package mocks provides gomock implementations of the storefront ports.
//
// The mocks are generated with go.uber.org/mock (gomock) from the interfaces in internal/ports.
// Hand-written in-memory doubles for the session ports live in internal/mocks/auth.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	cartAPI := mocks.NewMockCartAPI(ctrl)
//	cartAPI.EXPECT().GetCart(gomock.Any()).Return(model.EmptyCart(), nil)
package mocks

// Generate mock for AuthAPI interface from internal/ports package.
// Login, Register, Logout, Validate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_api_mock.go github.com/target/parapharmacie-storefront/internal/ports AuthAPI

// Generate mock for CatalogAPI interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=catalog_api_mock.go github.com/target/parapharmacie-storefront/internal/ports CatalogAPI

// Generate mock for CartAPI interface from internal/ports package.
// GetCart, AddItem, UpdateItem, RemoveItem, ClearCart, CartCount, ValidateCart
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cart_api_mock.go github.com/target/parapharmacie-storefront/internal/ports CartAPI

// Generate mocks for the back-office ports (orders, manager console, admin console).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backoffice_api_mock.go github.com/target/parapharmacie-storefront/internal/ports OrderAPI,ManagerAPI,AdminAPI

// Generate mock for CacheRepository interface from internal/ports package.
// Set, Get, Delete, DeletePrefix, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/parapharmacie-storefront/internal/ports CacheRepository
