//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed product categories sold by the store.
type Category string

const (
	CategoryFaceSkinCare Category = "Soins du visage et de la peau"
	CategorySupplements  Category = "Compléments alimentaires et bien-être"
	CategoryHygieneBody  Category = "Hygiène & soins corporels"
)

// LowStockThreshold is the default threshold used by the manager console.
const LowStockThreshold = 10

// Categories returns the enumeration in display order.
func Categories() []Category {
	return []Category{CategoryFaceSkinCare, CategorySupplements, CategoryHygieneBody}
}

// Valid reports whether the category belongs to the enumeration.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches a category case-insensitively after trimming.
func ParseCategory(raw string) (Category, bool) {
	v := strings.TrimSpace(raw)
	for _, known := range Categories() {
		if strings.EqualFold(v, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Product is a catalog entry. It is read-only on the storefront side.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      Category        `json:"category"`
	ImageURL      string          `json:"imageUrl"`
	Available     bool            `json:"available"`
	StockQuantity int             `json:"stockQuantity"`
	InStock       bool            `json:"inStock"`
	CreatedAt     Timestamp       `json:"createdAt"`
}

// Purchasable reports whether the product can be added to a cart at all.
func (p Product) Purchasable() bool {
	return p.Available && p.StockQuantity > 0
}

// LowStock reports whether stock is positive but under the threshold.
func (p Product) LowStock(threshold int) bool {
	return p.StockQuantity > 0 && p.StockQuantity < threshold
}

// ProductInput is the payload managers submit to create or edit a product.
type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      Category        `json:"category"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	StockQuantity int             `json:"stockQuantity"`
	Available     bool            `json:"available"`
}

// Availability is the backend answer to a quantity availability check.
type Availability struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"requestedQuantity"`
	Available bool  `json:"available"`
}
