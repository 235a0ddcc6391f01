package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/observability/metrics"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// Cart operation names used in logs and metrics.
const (
	CartOpLoad     = "load"
	CartOpAdd      = "add"
	CartOpUpdate   = "update"
	CartOpRemove   = "remove"
	CartOpClear    = "clear"
	CartOpValidate = "validate"
)

// CartConfig tunes the cart service.
type CartConfig struct {
	// SnapshotTTL bounds snapshots of sessions without an expiry.
	SnapshotTTL time.Duration
	// SerializeMutations applies mutations of one session in issue order.
	SerializeMutations bool
}

// CartServiceOptions groups dependencies for CartService.
type CartServiceOptions struct {
	API       ports.CartAPI           // Required
	Snapshots ports.CartSnapshotStore // Required
	Sessions  ports.SessionStore      // Required: resolves tokens on identity changes
	Config    CartConfig
	Metrics   statsd.Sink
	Logger    *slog.Logger
	Clock     func() time.Time
}

// CartService keeps the shopper's cart snapshot in step with the backend cart.
// The snapshot only ever holds a server response or the empty cart; local
// state is never patched by hand.
type CartService struct {
	api       ports.CartAPI
	snapshots ports.CartSnapshotStore
	sessions  ports.SessionStore
	cfg       CartConfig
	locks     *keyedMutex
	metrics   statsd.Sink
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.IdentityObserver = (*CartService)(nil)

// NewCartService constructs a CartService.
func NewCartService(opts CartServiceOptions) (*CartService, error) {
	if opts.API == nil {
		return nil, errors.New("cart API is required")
	}
	if opts.Snapshots == nil {
		return nil, errors.New("cart snapshot store is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	cfg := opts.Config
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &CartService{
		api:       opts.API,
		snapshots: opts.Snapshots,
		sessions:  opts.Sessions,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		metrics:   opts.Metrics,
		logger:    logger.With("component", "cart_service"),
		now:       now,
	}, nil
}

// Load fetches the cart from the backend. On failure the snapshot becomes the
// empty cart and the error is returned alongside it.
func (s *CartService) Load(ctx context.Context, sess *domainauth.Session) (model.Cart, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.EmptyCart(), err
	}

	cart, err := s.api.GetCart(actx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.emit(CartOpLoad, metrics.ResultNoop, 0, ctxErr)
		return model.EmptyCart(), apperrors.MapContextError(ctxErr)
	}
	if err != nil {
		empty := model.EmptyCart()
		s.store(ctx, sess, empty)
		s.emit(CartOpLoad, metrics.ResultError, 0, err)
		return empty, fmt.Errorf("load cart: %w", err)
	}

	s.store(ctx, sess, cart)
	s.emit(CartOpLoad, metrics.ResultSuccess, cart.ItemCount, nil)
	return cart, nil
}

// AddItem adds quantity units of a product. Zero means one; negative
// quantities are rejected before any backend call.
func (s *CartService) AddItem(ctx context.Context, sess *domainauth.Session, productID int64, quantity int) (model.Cart, error) {
	if productID <= 0 {
		return model.Cart{}, apperrors.ValidationField("product_id", "Produit invalide")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return model.Cart{}, apperrors.ValidationField("quantity", "La quantité doit être au moins 1")
	}
	return s.mutate(ctx, sess, CartOpAdd, func(actx context.Context) (model.Cart, error) {
		return s.api.AddItem(actx, productID, quantity)
	})
}

// UpdateItem sets the quantity of a cart line. Quantities below one are
// rejected before any backend call; removal goes through RemoveItem.
func (s *CartService) UpdateItem(ctx context.Context, sess *domainauth.Session, itemID int64, quantity int) (model.Cart, error) {
	if quantity < 1 {
		return model.Cart{}, apperrors.ValidationField("quantity", "La quantité doit être au moins 1")
	}
	return s.mutate(ctx, sess, CartOpUpdate, func(actx context.Context) (model.Cart, error) {
		return s.api.UpdateItem(actx, itemID, quantity)
	})
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, sess *domainauth.Session, itemID int64) (model.Cart, error) {
	return s.mutate(ctx, sess, CartOpRemove, func(actx context.Context) (model.Cart, error) {
		return s.api.RemoveItem(actx, itemID)
	})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sess *domainauth.Session) (model.Cart, error) {
	return s.mutate(ctx, sess, CartOpClear, func(actx context.Context) (model.Cart, error) {
		if err := s.api.ClearCart(actx); err != nil {
			return model.Cart{}, err
		}
		return model.EmptyCart(), nil
	})
}

// Validate asks the backend whether the cart can still be fulfilled. An
// invalid verdict refreshes the snapshot so the shopper sees current stock.
func (s *CartService) Validate(ctx context.Context, sess *domainauth.Session) (model.CartValidation, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.CartValidation{}, err
	}
	v, err := s.api.ValidateCart(actx)
	if err != nil {
		s.emit(CartOpValidate, metrics.ResultError, 0, err)
		return model.CartValidation{}, fmt.Errorf("validate cart: %w", err)
	}
	if !v.Valid {
		if _, loadErr := s.Load(ctx, sess); loadErr != nil {
			s.logger.WarnContext(ctx, "cart refresh after failed validation", "session_id", sess.ID, "error", loadErr)
		}
	}
	s.emit(CartOpValidate, metrics.ResultSuccess, 0, nil)
	return v, nil
}

// Snapshot returns the stored cart, loading it once when none is stored.
// Anonymous visitors always get the empty cart.
func (s *CartService) Snapshot(ctx context.Context, sess *domainauth.Session) (model.Cart, error) {
	if sess == nil {
		return model.EmptyCart(), nil
	}
	cart, ok, err := s.snapshots.GetCart(ctx, sess.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "read cart snapshot", "session_id", sess.ID, "error", err)
	}
	if ok {
		return cart, nil
	}
	return s.Load(ctx, sess)
}

// IdentitySet loads the cart of a freshly signed-in shopper.
func (s *CartService) IdentitySet(ctx context.Context, sessionID string, _ domainauth.Identity) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "cart load skipped, session unreadable", "session_id", sessionID, "error", err)
		return
	}
	if _, err := s.Load(ctx, &sess); err != nil {
		s.logger.WarnContext(ctx, "initial cart load failed", "session_id", sessionID, "error", err)
	}
}

// IdentityCleared resets the snapshot to the empty cart without a backend call.
func (s *CartService) IdentityCleared(ctx context.Context, sessionID string) {
	if err := s.snapshots.DeleteCart(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to reset cart snapshot", "session_id", sessionID, "error", err)
	}
}

// mutate runs one backend mutation and replaces the snapshot with the server
// answer. Failed or abandoned calls leave the snapshot untouched.
func (s *CartService) mutate(
	ctx context.Context,
	sess *domainauth.Session,
	op string,
	call func(context.Context) (model.Cart, error),
) (model.Cart, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return model.Cart{}, err
	}
	if s.cfg.SerializeMutations {
		unlock, lockErr := s.locks.LockContext(ctx, sess.ID)
		if lockErr != nil {
			s.emit(op, metrics.ResultNoop, 0, lockErr)
			return model.Cart{}, apperrors.MapContextError(lockErr)
		}
		defer unlock()
	}

	cart, err := call(actx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.emit(op, metrics.ResultNoop, 0, ctxErr)
		return model.Cart{}, apperrors.MapContextError(ctxErr)
	}
	if err != nil {
		s.emit(op, metrics.ResultError, 0, err)
		return model.Cart{}, fmt.Errorf("cart %s: %w", op, err)
	}

	s.store(ctx, sess, cart)
	s.emit(op, metrics.ResultSuccess, cart.ItemCount, nil)
	return cart, nil
}

func (s *CartService) store(ctx context.Context, sess *domainauth.Session, cart model.Cart) {
	ttl := s.cfg.SnapshotTTL
	if !sess.ExpiresAt.IsZero() {
		if left := sess.ExpiresAt.Sub(s.now()); left > 0 {
			ttl = left
		}
	}
	if err := s.snapshots.SaveCart(ctx, sess.ID, cart, ttl); err != nil {
		s.logger.WarnContext(ctx, "failed to save cart snapshot", "session_id", sess.ID, "error", err)
		return
	}

	// Logout deletes the record before the snapshot, so a record missing after
	// the write means a reset already ran and this snapshot must not outlive it.
	if _, err := s.sessions.Get(ctx, sess.ID); errors.Is(err, ports.ErrSessionNotFound) {
		s.logger.DebugContext(ctx, "session ended during cart call, dropping snapshot", "session_id", sess.ID)
		if delErr := s.snapshots.DeleteCart(ctx, sess.ID); delErr != nil {
			s.logger.WarnContext(ctx, "failed to drop cart snapshot", "session_id", sess.ID, "error", delErr)
		}
	}
}

func (s *CartService) emit(op, result string, count int, err error) {
	metrics.EmitCartMutation(s.metrics, metrics.CartMutation{Op: op, Result: result, ItemCount: count, Err: err})
}
