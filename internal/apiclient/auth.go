package apiclient

import (
	"context"
	"net/http"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

var _ ports.Backend = (*Client)(nil)

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.send(ctx, http.MethodPost, "auth", "/auth/login", nil, req, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.send(ctx, http.MethodPost, "auth", "/auth/register", nil, req, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "auth", "/auth/logout", nil, nil, nil)
}

func (c *Client) Validate(ctx context.Context, token string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := c.send(ctx, http.MethodPost, "auth", "/auth/validate", nil, map[string]string{"token": token}, &out)
	return out.Valid, err
}
