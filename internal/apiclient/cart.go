package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

// cartResponse is the backend cart envelope. Its item counters are ignored:
// the count is always recomputed from the items.
type cartResponse struct {
	Items         []model.CartItem `json:"items"`
	TotalItems    int              `json:"totalItems"`
	TotalQuantity int              `json:"totalQuantity"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
}

func (r cartResponse) cart() model.Cart { return model.NewCart(r.Items, r.TotalAmount) }

type cartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (model.Cart, error) {
	var out cartResponse
	if err := c.get(ctx, "cart", "/cart", nil, &out); err != nil {
		return model.Cart{}, err
	}
	return out.cart(), nil
}

func (c *Client) AddItem(ctx context.Context, productID int64, quantity int) (model.Cart, error) {
	var out cartResponse
	body := cartItemRequest{ProductID: productID, Quantity: quantity}
	if err := c.send(ctx, http.MethodPost, "cart", "/cart/items", nil, body, &out); err != nil {
		return model.Cart{}, err
	}
	return out.cart(), nil
}

func (c *Client) UpdateItem(ctx context.Context, itemID int64, quantity int) (model.Cart, error) {
	var out cartResponse
	body := cartItemRequest{Quantity: quantity}
	if err := c.send(ctx, http.MethodPut, "cart", "/cart/items/"+strconv.FormatInt(itemID, 10), nil, body, &out); err != nil {
		return model.Cart{}, err
	}
	return out.cart(), nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID int64) (model.Cart, error) {
	var out cartResponse
	if err := c.send(ctx, http.MethodDelete, "cart", "/cart/items/"+strconv.FormatInt(itemID, 10), nil, nil, &out); err != nil {
		return model.Cart{}, err
	}
	return out.cart(), nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "cart", "/cart", nil, nil, nil)
}

func (c *Client) CartCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.get(ctx, "cart", "/cart/count", nil, &out)
	return out.Count, err
}

func (c *Client) ValidateCart(ctx context.Context) (model.CartValidation, error) {
	var out model.CartValidation
	err := c.get(ctx, "cart", "/cart/validate", nil, &out)
	return out, err
}
