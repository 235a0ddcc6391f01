package service

import (
	"context"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
)

// msgLoginRequired is returned when an operation needs a signed-in shopper.
const msgLoginRequired = "Veuillez vous connecter pour continuer."

// authed attaches the session token to ctx for backend calls.
func authed(ctx context.Context, sess *domainauth.Session) (context.Context, error) {
	if sess == nil || sess.Token == "" {
		return ctx, apperrors.Unauthorized(msgLoginRequired)
	}
	return apiclient.WithToken(ctx, sess.Token), nil
}
