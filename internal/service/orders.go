package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// DefaultOrderPageSize is the page size of the "my orders" listing.
const DefaultOrderPageSize = 10

// cartLoader refreshes the cart after checkout; CartService implements it.
type cartLoader interface {
	Load(ctx context.Context, sess *domainauth.Session) (model.Cart, error)
}

// OrderServiceOptions groups dependencies for OrderService.
type OrderServiceOptions struct {
	API    ports.OrderAPI // Required
	Carts  cartLoader     // Optional: refreshes the cart after checkout
	Logger *slog.Logger
}

// OrderService covers checkout and the shopper's own orders.
type OrderService struct {
	api    ports.OrderAPI
	carts  cartLoader
	logger *slog.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(opts OrderServiceOptions) (*OrderService, error) {
	if opts.API == nil {
		return nil, errors.New("order API is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{api: opts.API, carts: opts.Carts, logger: logger.With("component", "order_service")}, nil
}

// CheckoutInput is the checkout form after validation.
type CheckoutInput struct {
	ShippingAddress string
	Phone           string
	ItemIDs         []int64
	DiscountCode    string
	Notes           string
}

// Checkout turns the selected cart lines into an order. The backend removes
// ordered lines from the cart, so the cart is reloaded afterwards.
func (s *OrderService) Checkout(ctx context.Context, sess *domainauth.Session, in CheckoutInput) (model.Order, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.Order{}, err
	}
	if len(in.ItemIDs) == 0 {
		return model.Order{}, apperrors.ValidationField("items", "Votre panier est vide")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return model.Order{}, apperrors.ValidationField("shipping_address", "L'adresse de livraison est requise")
	}

	order, err := s.api.CreateOrder(actx, model.CreateOrderRequest{
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Phone:           strings.TrimSpace(in.Phone),
		CartItemIDs:     in.ItemIDs,
		DiscountCode:    strings.TrimSpace(in.DiscountCode),
		SpecialNotes:    strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.logger.InfoContext(ctx, "order placed", "order_id", order.ID, "user_id", sess.UserID, "items", len(in.ItemIDs))

	if s.carts != nil {
		if _, loadErr := s.carts.Load(ctx, sess); loadErr != nil {
			s.logger.WarnContext(ctx, "cart refresh after checkout failed", "error", loadErr)
		}
	}
	return order, nil
}

// MyOrders returns one page of the shopper's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, sess *domainauth.Session, page, size int) (model.OrderPage, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.OrderPage{}, err
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultOrderPageSize
	}
	return s.api.ListOrdersPage(actx, page, size)
}

// Order returns one of the shopper's orders.
func (s *OrderService) Order(ctx context.Context, sess *domainauth.Session, id int64) (model.Order, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.Order{}, err
	}
	return s.api.GetOrder(actx, id)
}

// Cancel cancels a pending order. The backend has the final word on status.
func (s *OrderService) Cancel(ctx context.Context, sess *domainauth.Session, id int64) (model.Order, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.Order{}, err
	}
	return s.api.CancelOrder(actx, id)
}

// Stats summarizes the shopper's order history.
func (s *OrderService) Stats(ctx context.Context, sess *domainauth.Session) (model.OrderStats, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.OrderStats{}, err
	}
	return s.api.OrderStats(actx)
}
