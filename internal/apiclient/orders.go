package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

func orderPath(id int64) string { return "/orders/" + strconv.FormatInt(id, 10) }

func (c *Client) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error) {
	var out model.Order
	err := c.send(ctx, http.MethodPost, "orders", "/orders", nil, req, &out)
	return out, err
}

func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.get(ctx, "orders", "/orders", nil, &out)
	return out, err
}

func (c *Client) ListOrdersPage(ctx context.Context, page, size int) (model.OrderPage, error) {
	var out model.OrderPage
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	err := c.get(ctx, "orders", "/orders/paginated", q, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	var out model.Order
	err := c.get(ctx, "orders", orderPath(id), nil, &out)
	return out, err
}

func (c *Client) CancelOrder(ctx context.Context, id int64) (model.Order, error) {
	var out model.Order
	err := c.send(ctx, http.MethodPut, "orders", orderPath(id)+"/cancel", nil, nil, &out)
	return out, err
}

func (c *Client) OrderStats(ctx context.Context) (model.OrderStats, error) {
	var out model.OrderStats
	err := c.get(ctx, "orders", "/orders/stats", nil, &out)
	return out, err
}

func (c *Client) AllOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.get(ctx, "orders", "/orders/admin/all", nil, &out)
	return out, err
}

func (c *Client) OrdersByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	var out []model.Order
	err := c.get(ctx, "orders", "/orders/admin/status/"+string(status), nil, &out)
	return out, err
}

func (c *Client) RecentOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.get(ctx, "orders", "/orders/admin/recent", nil, &out)
	return out, err
}

func (c *Client) AdminUpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (model.Order, error) {
	var out model.Order
	body := map[string]string{"status": string(status)}
	err := c.send(ctx, http.MethodPut, "orders", "/orders/admin/"+strconv.FormatInt(id, 10)+"/status", nil, body, &out)
	return out, err
}
