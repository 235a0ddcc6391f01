//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of fulfillment states. Only managers and
// admins move an order between them, through the backend.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses returns the statuses in workflow order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled}
}

// ParseOrderStatus normalizes a status string and reports whether it is supported.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return s, true
	default:
		return "", false
	}
}

// Label returns the shopper-facing label.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "En attente"
	case OrderStatusProcessing:
		return "En cours de traitement"
	case OrderStatusCompleted:
		return "Terminée"
	case OrderStatusCancelled:
		return "Annulée"
	default:
		return string(s)
	}
}

// Cancellable reports whether a shopper may still cancel an order in this status.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}

// OrderItem is a line captured at checkout time.
type OrderItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

// Order is a snapshot of cart items submitted for fulfillment.
type Order struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"userId"`
	UserName          string          `json:"userName"`
	UserEmail         string          `json:"userEmail"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Status            OrderStatus     `json:"status"`
	StatusDisplayName string          `json:"statusDisplayName"`
	ShippingAddress   string          `json:"shippingAddress"`
	Phone             string          `json:"phone"`
	CreatedAt         Timestamp       `json:"createdAt"`
	UpdatedAt         Timestamp       `json:"updatedAt"`
	Items             []OrderItem     `json:"orderItems"`
	DiscountCode      string          `json:"discountCode"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	FinalAmount       decimal.Decimal `json:"finalAmount"`
	SpecialNotes      string          `json:"specialNotes"`
}

// AmountDue returns the final amount, falling back to the total when no discount applied.
func (o Order) AmountDue() decimal.Decimal {
	if o.FinalAmount.IsPositive() {
		return o.FinalAmount
	}
	return o.TotalAmount
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	ShippingAddress string  `json:"shippingAddress"`
	Phone           string  `json:"phone"`
	CartItemIDs     []int64 `json:"cartItemIds"`
	DiscountCode    string  `json:"discountCode,omitempty"`
	SpecialNotes    string  `json:"specialNotes,omitempty"`
}

// OrderStats summarizes a shopper's order history.
type OrderStats struct {
	TotalOrders int64           `json:"totalOrders"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// OrderPage is one page of a paginated order listing.
type OrderPage struct {
	Orders     []Order `json:"content"`
	Page       int     `json:"number"`
	Size       int     `json:"size"`
	TotalPages int     `json:"totalPages"`
	Total      int64   `json:"totalElements"`
}
