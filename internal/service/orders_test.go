package service

import (
	"context"
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
)

type loadRecorder struct {
	loads int
}

func (l *loadRecorder) Load(context.Context, *domainauth.Session) (model.Cart, error) {
	l.loads++
	return model.EmptyCart(), nil
}

func shopper() *domainauth.Session {
	return &domainauth.Session{ID: "s", Token: "jwt", UserID: 7, Role: domainauth.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
}

func TestOrderService_Checkout(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockOrderAPI(ctrl)
	carts := &loadRecorder{}
	svc, err := NewOrderService(OrderServiceOptions{API: api, Carts: carts})
	require.NoError(t, err)

	want := model.CreateOrderRequest{
		ShippingAddress: "12 rue de Carthage, Tunis",
		Phone:           "+216 71 000 000",
		CartItemIDs:     []int64{4, 5},
		SpecialNotes:    "Sonner deux fois",
	}
	api.EXPECT().CreateOrder(gomock.Any(), want).DoAndReturn(func(ctx context.Context, _ model.CreateOrderRequest) (model.Order, error) {
		assert.Equal(t, "jwt", apiclient.TokenFrom(ctx))
		return model.Order{ID: 42, Status: model.OrderStatusPending, TotalAmount: decimal.NewFromInt(30)}, nil
	})

	order, err := svc.Checkout(context.Background(), shopper(), CheckoutInput{
		ShippingAddress: " 12 rue de Carthage, Tunis ",
		Phone:           "+216 71 000 000",
		ItemIDs:         []int64{4, 5},
		Notes:           "Sonner deux fois",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, 1, carts.loads)
}

func TestOrderService_CheckoutValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, err := NewOrderService(OrderServiceOptions{API: mocks.NewMockOrderAPI(ctrl)})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), shopper(), CheckoutInput{ShippingAddress: "x"})
	assert.Equal(t, "items", apperrors.GetField(err))

	_, err = svc.Checkout(context.Background(), shopper(), CheckoutInput{ItemIDs: []int64{1}})
	assert.Equal(t, "shipping_address", apperrors.GetField(err))

	_, err = svc.Checkout(context.Background(), nil, CheckoutInput{})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestOrderService_CheckoutBackendFailureKeepsCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockOrderAPI(ctrl)
	carts := &loadRecorder{}
	svc, err := NewOrderService(OrderServiceOptions{API: api, Carts: carts})
	require.NoError(t, err)

	api.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		Return(model.Order{}, &apiclient.Error{Kind: apiclient.KindDomain, Status: 400, Message: "Stock insuffisant"})

	_, err = svc.Checkout(context.Background(), shopper(), CheckoutInput{ShippingAddress: "x", ItemIDs: []int64{1}})
	require.Error(t, err)
	assert.Equal(t, "Stock insuffisant", apiclient.UserMessage(err))
	assert.Equal(t, 0, carts.loads)
}

func TestOrderService_MyOrdersDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockOrderAPI(ctrl)
	svc, err := NewOrderService(OrderServiceOptions{API: api})
	require.NoError(t, err)

	api.EXPECT().ListOrdersPage(gomock.Any(), 0, DefaultOrderPageSize).Return(model.OrderPage{TotalPages: 1}, nil)
	page, err := svc.MyOrders(context.Background(), shopper(), -2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)

	api.EXPECT().CancelOrder(gomock.Any(), int64(9)).Return(model.Order{ID: 9, Status: model.OrderStatusCancelled}, nil)
	o, err := svc.Cancel(context.Background(), shopper(), 9)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, o.Status)
}
