package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// DefaultCartPrefix is the key prefix for cart snapshots.
const DefaultCartPrefix = "cart:"

// CartStore keeps cart snapshots keyed by session ID.
type CartStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCartStore creates a cart snapshot store. An empty prefix selects DefaultCartPrefix.
func NewCartStore(client redis.UniversalClient, prefix string) *CartStore {
	if prefix == "" {
		prefix = DefaultCartPrefix
	}
	return &CartStore{client: client, prefix: prefix}
}

var _ ports.CartSnapshotStore = (*CartStore)(nil)

func (s *CartStore) SaveCart(ctx context.Context, sessionID string, cart model.Cart, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return s.client.Set(ctx, s.prefix+sessionID, data, ttl).Err()
}

func (s *CartStore) GetCart(ctx context.Context, sessionID string) (model.Cart, bool, error) {
	if sessionID == "" {
		return model.EmptyCart(), false, nil
	}
	data, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.EmptyCart(), false, nil
		}
		return model.EmptyCart(), false, fmt.Errorf("redis get: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		// A snapshot that cannot be read is treated as missing so the caller reloads.
		return model.EmptyCart(), false, nil
	}
	return model.NewCart(cart.Items, cart.TotalAmount), true, nil
}

func (s *CartStore) DeleteCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
