package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := c.get(ctx, "products", "/products", nil, &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	var out model.Product
	err := c.get(ctx, "products", "/products/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) ProductsByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	var out []model.Product
	err := c.get(ctx, "products", "/products/category/"+string(category), nil, &out)
	return out, err
}

func (c *Client) SearchProducts(ctx context.Context, name string) ([]model.Product, error) {
	var out []model.Product
	err := c.get(ctx, "products", "/products/search", url.Values{"name": {name}}, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.get(ctx, "products", "/products/categories", nil, &out)
	return out, err
}

func (c *Client) CheckAvailability(ctx context.Context, productID int64, quantity int) (model.Availability, error) {
	var out model.Availability
	q := url.Values{"quantity": {strconv.Itoa(quantity)}}
	err := c.get(ctx, "products", "/products/"+strconv.FormatInt(productID, 10)+"/availability", q, &out)
	return out, err
}

func (c *Client) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var out []model.Product
	q := url.Values{"threshold": {strconv.Itoa(threshold)}}
	err := c.get(ctx, "products", "/products/low-stock", q, &out)
	return out, err
}

func (c *Client) OutOfStock(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := c.get(ctx, "products", "/products/out-of-stock", nil, &out)
	return out, err
}
