package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrderRequest() *CreateOrderRequest {
	total := 350.0
	return &CreateOrderRequest{
		Name:        "Olena",
		Email:       "olena@example.com",
		Address:     "Khreshchatyk 1",
		City:        "Kyiv",
		PhoneNumber: "+380441234567",
		Items: []models.LineItem{
			{ProductID: 3, Name: "Batman #1", Price: 150, Quantity: 1},
			{ProductID: 7, Name: "Saga vol. 2", Price: 100, Quantity: 2},
		},
		Total: &total,
	}
}

func newOrderService(t *testing.T) (*OrderService, *memstore.Store, *recordingNotifier) {
	t.Helper()
	_, rc := newTestRedis(t)
	orders := memstore.New()
	notifier := &recordingNotifier{}
	return NewOrderService(orders, rc, notifier), orders, notifier
}

func TestCreateOrder_Pending(t *testing.T) {
	svc, orders, notifier := newOrderService(t)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	order, err := orders.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 350.0, order.Total)
	assert.Len(t, order.Items, 2)
	assert.Empty(t, notifier.confirmations())
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateOrderRequest)
	}{
		{"missing name", func(r *CreateOrderRequest) { r.Name = "" }},
		{"missing email", func(r *CreateOrderRequest) { r.Email = "" }},
		{"malformed email", func(r *CreateOrderRequest) { r.Email = "not-an-email" }},
		{"missing address", func(r *CreateOrderRequest) { r.Address = "" }},
		{"missing city", func(r *CreateOrderRequest) { r.City = "" }},
		{"missing phone", func(r *CreateOrderRequest) { r.PhoneNumber = "" }},
		{"no items", func(r *CreateOrderRequest) { r.Items = nil }},
		{"item without name", func(r *CreateOrderRequest) { r.Items[0].Name = "" }},
		{"item zero quantity", func(r *CreateOrderRequest) { r.Items[1].Quantity = 0 }},
		{"item negative price", func(r *CreateOrderRequest) { r.Items[0].Price = -1 }},
		{"missing total", func(r *CreateOrderRequest) { r.Total = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, orders, _ := newOrderService(t)
			req := validOrderRequest()
			tt.mutate(req)

			_, err := svc.CreateOrder(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)

			all, err := orders.ListOrders(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	svc, orders, _ := newOrderService(t)
	ctx := context.Background()

	req := validOrderRequest()
	req.IdempotencyKey = "checkout-123"

	first, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other := validOrderRequest()
	third, err := svc.CreateOrder(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)

	all, err := orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// gatedOrders holds an armed CreateOrder until released, or fails it
type gatedOrders struct {
	*memstore.Store
	armed   atomic.Bool
	fail    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (o *gatedOrders) CreateOrder(ctx context.Context, order *models.Order) error {
	if o.fail.CompareAndSwap(true, false) {
		return errConnRefused
	}
	if o.armed.CompareAndSwap(true, false) {
		close(o.entered)
		<-o.release
	}
	return o.Store.CreateOrder(ctx, order)
}

func TestCreateOrder_ConcurrentSameKeyCreatesOnce(t *testing.T) {
	_, rc := newTestRedis(t)
	orders := &gatedOrders{Store: memstore.New(), entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewOrderService(orders, rc, nil)
	ctx := context.Background()

	req := validOrderRequest()
	req.IdempotencyKey = "checkout-456"

	orders.armed.Store(true)
	firstID := make(chan string, 1)
	go func() {
		id, err := svc.CreateOrder(ctx, req)
		assert.NoError(t, err)
		firstID <- id
	}()
	<-orders.entered

	_, err := svc.CreateOrder(ctx, req)
	assert.ErrorIs(t, err, ErrOrderInProgress)

	close(orders.release)
	first := <-firstID
	require.NotEmpty(t, first)

	again, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	all, err := orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateOrder_FailedCreateReleasesKey(t *testing.T) {
	_, rc := newTestRedis(t)
	orders := &gatedOrders{Store: memstore.New()}
	svc := NewOrderService(orders, rc, nil)
	ctx := context.Background()

	req := validOrderRequest()
	req.IdempotencyKey = "checkout-789"

	orders.fail.Store(true)
	_, err := svc.CreateOrder(ctx, req)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	id, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCreateOrder_IdempotencyStoreDown(t *testing.T) {
	mr, rc := newTestRedis(t)
	orders := memstore.New()
	svc := NewOrderService(orders, rc, nil)
	mr.Close()

	req := validOrderRequest()
	req.IdempotencyKey = "checkout-000"

	id, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestConfirmOrder_NotifiesOnce(t *testing.T) {
	svc, orders, notifier := newOrderService(t)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmOrder(ctx, id))

	order, err := orders.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)

	sent := notifier.confirmations()
	require.Len(t, sent, 1)
	assert.Equal(t, models.EventTypeOrderConfirmed, sent[0].EventType)
	assert.Equal(t, id, sent[0].OrderID)
	assert.Equal(t, "olena@example.com", sent[0].Email)
	assert.Equal(t, "Olena", sent[0].Name)
	assert.Equal(t, 350.0, sent[0].Total)
	assert.Len(t, sent[0].Items, 2)

	require.NoError(t, svc.ConfirmOrder(ctx, id))
	assert.Len(t, notifier.confirmations(), 1)
}

func TestConfirmOrder_UnknownID(t *testing.T) {
	svc, _, notifier := newOrderService(t)

	err := svc.ConfirmOrder(context.Background(), "no-such-order")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
	assert.Empty(t, notifier.confirmations())
}

func TestConfirmOrder_NotifierFailureIsSwallowed(t *testing.T) {
	svc, orders, notifier := newOrderService(t)
	notifier.err = errors.New("kafka: leader not available")
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)

	assert.NoError(t, svc.ConfirmOrder(ctx, id))

	order, err := orders.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Len(t, notifier.confirmations(), 1)
}

func TestConfirmOrder_NoNotifier(t *testing.T) {
	orders := memstore.New()
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	assert.NoError(t, svc.ConfirmOrder(ctx, id))
}

func TestDeleteOrder_Idempotent(t *testing.T) {
	svc, _, notifier := newOrderService(t)
	ctx := context.Background()

	pending, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	confirmed, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmOrder(ctx, confirmed))

	require.NoError(t, svc.DeleteOrder(ctx, pending))
	require.NoError(t, svc.DeleteOrder(ctx, pending))
	require.NoError(t, svc.DeleteOrder(ctx, confirmed))
	require.NoError(t, svc.DeleteOrder(ctx, "never-existed"))

	assert.ErrorIs(t, svc.ConfirmOrder(ctx, pending), store.ErrOrderNotFound)
	assert.Len(t, notifier.confirmations(), 1)

	all, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListOrders(t *testing.T) {
	svc, _, _ := newOrderService(t)
	ctx := context.Background()

	all, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	first, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmOrder(ctx, second))

	all, err = svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID)
	assert.Equal(t, models.OrderStatusPending, all[0].Status)
	assert.Equal(t, second, all[1].ID)
	assert.Equal(t, models.OrderStatusConfirmed, all[1].Status)
}
