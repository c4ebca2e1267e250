package service

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	idempotencyTTL  = 24 * time.Hour
	notifyTimeout   = 5 * time.Second
	notifyKindOrder = "order_confirmed"
)

// OrderService handles order business logic
type OrderService struct {
	orders      OrderRepository
	idempotency IdempotencyStore
	notifier    Notifier
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewOrderService creates a new order service. idempotency and notifier may be nil.
func NewOrderService(orders OrderRepository, idempotency IdempotencyStore, notifier Notifier) *OrderService {
	return &OrderService{
		orders:      orders,
		idempotency: idempotency,
		notifier:    notifier,
		validate:    validator.New(),
		logger:      util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Name           string            `json:"name" validate:"required"`
	Email          string            `json:"email" validate:"required,email"`
	Address        string            `json:"address" validate:"required"`
	City           string            `json:"city" validate:"required"`
	PhoneNumber    string            `json:"phoneNumber" validate:"required"`
	Items          []models.LineItem `json:"items" validate:"required,min=1,dive"`
	Total          *float64          `json:"total" validate:"required,gte=0"`
	IdempotencyKey string            `json:"-"`
}

// CreateOrder stores a pending order. No notification is sent.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return "", validationErr(err)
	}

	claimed := false
	if req.IdempotencyKey != "" && s.idempotency != nil {
		existing, ok, err := s.claimIdempotencyKey(ctx, req.IdempotencyKey)
		switch {
		case err != nil:
			return "", err
		case existing != "":
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing))
			return existing, nil
		}
		claimed = ok
	}

	order := &models.Order{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		PhoneNumber: req.PhoneNumber,
		Items:       models.LineItems(req.Items),
		Total:       *req.Total,
		Status:      models.OrderStatusPending,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("store").Inc()
		if claimed {
			if err := s.idempotency.ReleaseIdempotencyKey(context.WithoutCancel(ctx), req.IdempotencyKey); err != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
		return "", storeErr("failed to create order", err)
	}

	if claimed {
		if err := s.idempotency.SetIdempotencyKey(ctx, req.IdempotencyKey, order.ID, idempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total))

	return order.ID, nil
}

// claimIdempotencyKey reserves key for this request. It returns the order id
// when an earlier request already completed under key. An unreachable store
// degrades to a non-idempotent create.
func (s *OrderService) claimIdempotencyKey(ctx context.Context, key string) (existing string, claimed bool, err error) {
	reserved, err := s.idempotency.ReserveIdempotencyKey(ctx, key, idempotencyTTL)
	if err != nil {
		s.logger.Warn("Idempotency reservation failed", zap.Error(err))
		return "", false, nil
	}
	if reserved {
		return "", true, nil
	}

	existing, err = s.idempotency.GetIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		return existing, false, nil
	case errors.Is(err, redisclient.ErrIdempotencyPending):
		return "", false, ErrOrderInProgress
	default:
		s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		return "", false, nil
	}
}

// ConfirmOrder marks the order confirmed and hands a confirmation email to the
// notifier. The notification outcome never changes the result. Confirming an
// order twice does not notify twice.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmOrder")
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return storeErr("failed to load order", err)
	}

	if !order.Confirm() {
		s.logger.Info("Order already confirmed", zap.String("order_id", orderID))
		return nil
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, order.Status); err != nil {
		return storeErr("failed to confirm order", err)
	}

	util.OrdersConfirmedTotal.Inc()
	s.logger.Info("Order confirmed", zap.String("order_id", orderID))

	s.notifyConfirmed(ctx, order)
	return nil
}

func (s *OrderService) notifyConfirmed(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}

	event := &models.OrderConfirmedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderConfirmed,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		Name:    order.Name,
		Email:   order.Email,
		Items:   order.Items,
		Total:   order.Total,
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.PublishOrderConfirmed(notifyCtx, event); err != nil {
		util.NotificationsFailedTotal.WithLabelValues(notifyKindOrder, "publish").Inc()
		s.logger.Error("Failed to hand off order confirmation",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

// DeleteOrder removes the order. Deleting a missing order succeeds.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return storeErr("failed to delete order", err)
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted", zap.String("order_id", orderID))
	return nil
}

// ListOrders returns every order
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, storeErr("failed to list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

