package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/mocks"
	authmocks "github.com/target/parapharmacie-storefront/internal/mocks/auth"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
)

type cartFixture struct {
	api       *mocks.MockCartAPI
	snapshots *authmocks.MemoryCartStore
	sessions  *authmocks.MemorySessionStore
	metrics   *statsd.Recorder
	svc       *CartService
	sess      *domainauth.Session
}

func newCartFixture(t *testing.T, serialize bool) *cartFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &cartFixture{
		api:       mocks.NewMockCartAPI(ctrl),
		snapshots: authmocks.NewMemoryCartStore(),
		sessions:  authmocks.NewMemorySessionStore(),
		metrics:   &statsd.Recorder{},
		sess: &domainauth.Session{
			ID:        "sess-1",
			Token:     "jwt",
			UserID:    7,
			Role:      domainauth.RoleUser,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	require.NoError(t, f.sessions.Save(context.Background(), *f.sess))
	svc, err := NewCartService(CartServiceOptions{
		API:       f.api,
		Snapshots: f.snapshots,
		Sessions:  f.sessions,
		Config:    CartConfig{SerializeMutations: serialize},
		Metrics:   f.metrics,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *cartFixture) stored(t *testing.T) (model.Cart, bool) {
	t.Helper()
	c, ok, err := f.snapshots.GetCart(context.Background(), f.sess.ID)
	require.NoError(t, err)
	return c, ok
}

func line(id int64, qty int, price int64) model.CartItem {
	p := decimal.NewFromInt(price)
	return model.CartItem{
		ID:         id,
		Product:    model.Product{ID: id * 10, Name: "p", Price: p},
		Quantity:   qty,
		TotalPrice: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func cartOf(items ...model.CartItem) model.Cart {
	return model.NewCart(items, decimal.Zero)
}

func expectToken(t *testing.T) func(ctx context.Context) {
	return func(ctx context.Context) {
		assert.Equal(t, "jwt", apiclient.TokenFrom(ctx))
	}
}

func TestCartService_Load(t *testing.T) {
	f := newCartFixture(t, true)
	f.api.EXPECT().GetCart(gomock.Any()).DoAndReturn(func(ctx context.Context) (model.Cart, error) {
		expectToken(t)(ctx)
		return cartOf(line(1, 2, 5), line(2, 3, 4)), nil
	})

	cart, err := f.svc.Load(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.ItemCount)
	assert.True(t, decimal.NewFromInt(22).Equal(cart.TotalAmount))

	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.Equal(t, 5, stored.ItemCount)
	require.Len(t, f.metrics.Named("cart.item_count"), 1)
	assert.InDelta(t, 5, f.metrics.Named("cart.item_count")[0].Value, 0)
}

func TestCartService_LoadFailureResetsToEmpty(t *testing.T) {
	f := newCartFixture(t, true)
	require.NoError(t, f.snapshots.SaveCart(context.Background(), f.sess.ID, cartOf(line(1, 4, 2)), time.Hour))
	f.api.EXPECT().GetCart(gomock.Any()).Return(model.Cart{}, &apiclient.Error{Kind: apiclient.KindServer, Status: 500})

	cart, err := f.svc.Load(context.Background(), f.sess)
	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindServer))
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.ItemCount)

	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.True(t, stored.IsEmpty())
	assert.Equal(t, 0, stored.ItemCount)
}

func TestCartService_RequiresSession(t *testing.T) {
	f := newCartFixture(t, true)

	_, err := f.svc.AddItem(context.Background(), nil, 1, 1)
	assert.True(t, apperrors.IsUnauthorized(err))
	_, err = f.svc.Load(context.Background(), &domainauth.Session{ID: "x"})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestCartService_QuantityValidationSkipsBackend(t *testing.T) {
	// No EXPECT calls: any backend call fails the test.
	f := newCartFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.UpdateItem(ctx, f.sess, 1, 0)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "quantity", apperrors.GetField(err))

	_, err = f.svc.UpdateItem(ctx, f.sess, 1, -3)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.AddItem(ctx, f.sess, 1, -1)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.AddItem(ctx, f.sess, 0, 1)
	assert.True(t, apperrors.IsValidation(err))

	_, ok := f.stored(t)
	assert.False(t, ok)
}

func TestCartService_AddItemDefaultsQuantity(t *testing.T) {
	f := newCartFixture(t, true)
	f.api.EXPECT().AddItem(gomock.Any(), int64(10), 1).Return(cartOf(line(1, 1, 3)), nil)

	cart, err := f.svc.AddItem(context.Background(), f.sess, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount)
}

func TestCartService_CountTracksServerAfterEveryMutation(t *testing.T) {
	f := newCartFixture(t, true)
	ctx := context.Background()

	gomock.InOrder(
		f.api.EXPECT().AddItem(gomock.Any(), int64(10), 2).Return(cartOf(line(1, 2, 3)), nil),
		f.api.EXPECT().AddItem(gomock.Any(), int64(20), 5).Return(cartOf(line(1, 2, 3), line(2, 5, 1)), nil),
		f.api.EXPECT().UpdateItem(gomock.Any(), int64(2), 1).Return(cartOf(line(1, 2, 3), line(2, 1, 1)), nil),
		f.api.EXPECT().RemoveItem(gomock.Any(), int64(1)).Return(cartOf(line(2, 1, 1)), nil),
		f.api.EXPECT().ClearCart(gomock.Any()).Return(nil),
	)

	steps := []struct {
		run  func() (model.Cart, error)
		want int
	}{
		{func() (model.Cart, error) { return f.svc.AddItem(ctx, f.sess, 10, 2) }, 2},
		{func() (model.Cart, error) { return f.svc.AddItem(ctx, f.sess, 20, 5) }, 7},
		{func() (model.Cart, error) { return f.svc.UpdateItem(ctx, f.sess, 2, 1) }, 3},
		{func() (model.Cart, error) { return f.svc.RemoveItem(ctx, f.sess, 1) }, 1},
		{func() (model.Cart, error) { return f.svc.Clear(ctx, f.sess) }, 0},
	}
	for i, step := range steps {
		cart, err := step.run()
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.want, cart.ItemCount, "step %d", i)
		assert.Equal(t, model.CountItems(cart.Items), cart.ItemCount, "step %d", i)

		stored, ok := f.stored(t)
		require.True(t, ok)
		assert.Equal(t, step.want, stored.ItemCount, "step %d", i)
	}
}

func TestCartService_FailedMutationLeavesSnapshot(t *testing.T) {
	f := newCartFixture(t, true)
	before := cartOf(line(1, 2, 3))
	require.NoError(t, f.snapshots.SaveCart(context.Background(), f.sess.ID, before, time.Hour))

	domainErr := &apiclient.Error{Kind: apiclient.KindDomain, Status: 400, Message: "Stock insuffisant"}
	f.api.EXPECT().AddItem(gomock.Any(), int64(10), 99).Return(model.Cart{}, domainErr)

	_, err := f.svc.AddItem(context.Background(), f.sess, 10, 99)
	require.Error(t, err)
	assert.Equal(t, "Stock insuffisant", apiclient.UserMessage(err))

	stored, _ := f.stored(t)
	assert.Equal(t, before.ItemCount, stored.ItemCount)
	assert.Equal(t, before.ItemIDs(), stored.ItemIDs())
}

func TestCartService_StaleResponseNotApplied(t *testing.T) {
	f := newCartFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())

	f.api.EXPECT().AddItem(gomock.Any(), int64(10), 1).DoAndReturn(func(context.Context, int64, int) (model.Cart, error) {
		cancel()
		return cartOf(line(1, 1, 3)), nil
	})

	_, err := f.svc.AddItem(ctx, f.sess, 10, 1)
	assert.True(t, apperrors.IsCanceled(err))
	_, ok := f.stored(t)
	assert.False(t, ok)
}

func TestCartService_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := newCartFixture(t, true)
		f.api.EXPECT().ValidateCart(gomock.Any()).Return(model.CartValidation{Valid: true}, nil)
		v, err := f.svc.Validate(context.Background(), f.sess)
		require.NoError(t, err)
		assert.True(t, v.Valid)
	})

	t.Run("invalid reloads", func(t *testing.T) {
		f := newCartFixture(t, true)
		gomock.InOrder(
			f.api.EXPECT().ValidateCart(gomock.Any()).Return(model.CartValidation{Valid: false, Message: "Stock insuffisant pour Gel"}, nil),
			f.api.EXPECT().GetCart(gomock.Any()).Return(cartOf(line(1, 1, 3)), nil),
		)
		v, err := f.svc.Validate(context.Background(), f.sess)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, "Stock insuffisant pour Gel", v.Message)
		stored, ok := f.stored(t)
		require.True(t, ok)
		assert.Equal(t, 1, stored.ItemCount)
	})
}

func TestCartService_SnapshotLoadsOnce(t *testing.T) {
	f := newCartFixture(t, true)
	f.api.EXPECT().GetCart(gomock.Any()).Return(cartOf(line(1, 3, 1)), nil).Times(1)

	for range 3 {
		cart, err := f.svc.Snapshot(context.Background(), f.sess)
		require.NoError(t, err)
		assert.Equal(t, 3, cart.ItemCount)
	}

	anon, err := f.svc.Snapshot(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, anon.IsEmpty())
}

func TestCartService_IdentityTransitions(t *testing.T) {
	f := newCartFixture(t, true)
	f.api.EXPECT().GetCart(gomock.Any()).Return(cartOf(line(1, 2, 1)), nil)

	f.svc.IdentitySet(context.Background(), f.sess.ID, f.sess.Identity())
	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.Equal(t, 2, stored.ItemCount)

	// Clearing never calls the backend.
	f.svc.IdentityCleared(context.Background(), f.sess.ID)
	_, ok = f.stored(t)
	assert.False(t, ok)

	f.svc.IdentitySet(context.Background(), "unknown", domainauth.Identity{})
}

func TestCartService_SerializesMutationsPerSession(t *testing.T) {
	f := newCartFixture(t, true)

	var inFlight, maxInFlight atomic.Int32
	f.api.EXPECT().AddItem(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, productID int64, qty int) (model.Cart, error) {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return cartOf(line(productID, qty, 1)), nil
		}).Times(8)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddItem(context.Background(), f.sess, int64(i+1), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestCartService_LogoutDuringMutationLeavesNoSnapshot(t *testing.T) {
	f := newCartFixture(t, false)
	f.api.EXPECT().AddItem(gomock.Any(), int64(10), 1).DoAndReturn(func(ctx context.Context, _ int64, _ int) (model.Cart, error) {
		// Logout lands while the backend call is in flight.
		require.NoError(t, f.sessions.Delete(ctx, f.sess.ID))
		f.svc.IdentityCleared(ctx, f.sess.ID)
		return cartOf(line(1, 1, 3)), nil
	})

	cart, err := f.svc.AddItem(context.Background(), f.sess, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount)

	_, ok := f.stored(t)
	assert.False(t, ok)
}

func TestCartService_QueuedMutationGivesUpOnCancel(t *testing.T) {
	f := newCartFixture(t, true)
	unlock := f.svc.locks.Lock(f.sess.ID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		// No EXPECT: the queued call must never reach the backend.
		_, err := f.svc.AddItem(ctx, f.sess, 10, 1)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.True(t, apperrors.IsCanceled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("queued mutation still waiting after cancel")
	}
	unlock()
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestCartService_SnapshotTTLFollowsSessionExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockCartAPI(ctrl)
	snapshots := authmocks.NewMemoryCartStore()
	sessions := authmocks.NewMemorySessionStore()

	svc, err := NewCartService(CartServiceOptions{
		API:       api,
		Snapshots: snapshots,
		Sessions:  sessions,
		Config:    CartConfig{SnapshotTTL: 24 * time.Hour},
		Clock:     func() time.Time { return now },
	})
	require.NoError(t, err)

	expiring := &domainauth.Session{ID: "s-exp", Token: "jwt", ExpiresAt: now.Add(90 * time.Minute)}
	lapsed := &domainauth.Session{ID: "s-old", Token: "jwt", ExpiresAt: now.Add(-time.Minute)}
	open := &domainauth.Session{ID: "s-open", Token: "jwt"}
	for _, sess := range []*domainauth.Session{expiring, lapsed, open} {
		require.NoError(t, sessions.Save(context.Background(), *sess))
	}
	api.EXPECT().GetCart(gomock.Any()).Return(cartOf(line(1, 1, 2)), nil).Times(3)

	tests := []struct {
		sess *domainauth.Session
		want time.Duration
	}{
		{expiring, 90 * time.Minute},
		{lapsed, 24 * time.Hour},
		{open, 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.sess.ID, func(t *testing.T) {
			_, err := svc.Load(context.Background(), tt.sess)
			require.NoError(t, err)
			assert.Equal(t, tt.want, snapshots.TTL(tt.sess.ID))
		})
	}
}

func TestNewCartService_RequiresDependencies(t *testing.T) {
	_, err := NewCartService(CartServiceOptions{})
	require.Error(t, err)
	_, err = NewCartService(CartServiceOptions{API: mocks.NewMockCartAPI(gomock.NewController(t))})
	require.Error(t, err)
}
