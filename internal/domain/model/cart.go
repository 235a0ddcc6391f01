//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"github.com/shopspring/decimal"
)

// CartItem is one line of a shopper's cart.
type CartItem struct {
	ID             int64           `json:"id"`
	Product        Product         `json:"product"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	CreatedAt      Timestamp       `json:"createdAt"`
	StockAvailable bool            `json:"stockAvailable"`
}

// Cart is an ordered list of items plus derived totals.
// ItemCount is always recomputed from Items; never patch it directly.
type Cart struct {
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
}

// EmptyCart returns a cart with no items, zero total and zero count.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}, TotalAmount: decimal.Zero}
}

// NewCart builds a cart snapshot from server items and recomputes the count.
// When the server total is zero but items carry prices, the total is summed locally.
func NewCart(items []CartItem, total decimal.Decimal) Cart {
	if items == nil {
		items = []CartItem{}
	}
	c := Cart{Items: items, TotalAmount: total}
	if c.TotalAmount.IsZero() {
		c.TotalAmount = SumLineTotals(items)
	}
	c.ItemCount = CountItems(items)
	return c
}

// CountItems returns the sum of quantities across items.
func CountItems(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// SumLineTotals adds line totals, deriving them from unit price when absent.
func SumLineTotals(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := it.TotalPrice
		if line.IsZero() {
			line = it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		total = total.Add(line)
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// ItemIDs returns the identifiers of all cart lines in order.
func (c Cart) ItemIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

// Item returns the line with the given identifier.
func (c Cart) Item(id int64) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return CartItem{}, false
}

// CartValidation is the backend verdict on whether the cart can still be fulfilled.
type CartValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}
