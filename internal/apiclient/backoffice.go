package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

func idPath(prefix string, id int64) string { return prefix + strconv.FormatInt(id, 10) }

// Manager console.

func (c *Client) ManagerOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.get(ctx, "manager", "/manager/orders", nil, &out)
	return out, err
}

func (c *Client) ManagerUpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (model.Order, error) {
	var out model.Order
	q := url.Values{"status": {string(status)}}
	err := c.send(ctx, http.MethodPut, "manager", idPath("/manager/orders/", id)+"/status", q, nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (model.Product, error) {
	var out model.Product
	err := c.send(ctx, http.MethodPost, "manager", "/manager/products", nil, in, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	var out model.Product
	err := c.send(ctx, http.MethodPut, "manager", idPath("/manager/products/", id), nil, in, &out)
	return out, err
}

func (c *Client) UpdateStock(ctx context.Context, id int64, stock int) (model.Product, error) {
	var out model.Product
	q := url.Values{"stock": {strconv.Itoa(stock)}}
	err := c.send(ctx, http.MethodPut, "manager", idPath("/manager/products/", id)+"/stock", q, nil, &out)
	return out, err
}

// Admin console.

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.get(ctx, "admin", "/admin/users", nil, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id int64) (model.User, error) {
	var out model.User
	err := c.get(ctx, "admin", idPath("/admin/users/", id), nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	var out model.User
	err := c.send(ctx, http.MethodPost, "admin", "/admin/users", nil, req, &out)
	return out, err
}

func (c *Client) UpdateUserRole(ctx context.Context, id int64, role string) (model.User, error) {
	var out model.User
	err := c.send(ctx, http.MethodPut, "admin", idPath("/admin/users/", id)+"/role", url.Values{"role": {role}}, nil, &out)
	return out, err
}

func (c *Client) SetUserEnabled(ctx context.Context, id int64, enabled bool) (model.User, error) {
	var out model.User
	q := url.Values{"enabled": {strconv.FormatBool(enabled)}}
	err := c.send(ctx, http.MethodPut, "admin", idPath("/admin/users/", id)+"/status", q, nil, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "admin", idPath("/admin/users/", id), nil, nil, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "admin", idPath("/admin/products/", id), nil, nil, nil)
}

func (c *Client) Statistics(ctx context.Context) (model.Statistics, error) {
	var out model.Statistics
	err := c.get(ctx, "admin", "/admin/statistics", nil, &out)
	return out, err
}
