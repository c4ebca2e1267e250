package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Cart consistency modes
const (
	CartOptimistic    = "optimistic"
	CartLastWriteWins = "last-write-wins"
)

// CartService manages the per-user slot cart
type CartService struct {
	users      UserRepository
	mode       string
	maxRetries int
	logger     *zap.Logger
}

// NewCartService creates a cart service. In optimistic mode every write is
// conditional on the cart version read and is retried up to maxRetries times.
// In last-write-wins mode the read cart is written back unconditionally.
func NewCartService(users UserRepository, mode string, maxRetries int) (*CartService, error) {
	if mode == "" {
		mode = CartOptimistic
	}
	if mode != CartOptimistic && mode != CartLastWriteWins {
		return nil, fmt.Errorf("unknown cart consistency mode %q", mode)
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &CartService{
		users:      users,
		mode:       mode,
		maxRetries: maxRetries,
		logger:     util.GetLogger(),
	}, nil
}

// Increment adds one to slot
func (s *CartService) Increment(ctx context.Context, userID string, slot int) error {
	ctx, span := util.StartSpan(ctx, "CartService.Increment")
	defer span.End()

	if !models.ValidSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	return s.mutate(ctx, userID, "increment", func(cart models.Cart) models.Cart {
		cart.Increment(slot)
		return cart
	})
}

// Decrement subtracts one from slot unless it is already zero. The cart is written either way.
func (s *CartService) Decrement(ctx context.Context, userID string, slot int) error {
	ctx, span := util.StartSpan(ctx, "CartService.Decrement")
	defer span.End()

	if !models.ValidSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	return s.mutate(ctx, userID, "decrement", func(cart models.Cart) models.Cart {
		cart.Decrement(slot)
		return cart
	})
}

// GetCart returns the user's full cart
func (s *CartService) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr("failed to load cart", err)
	}
	if user.Cart == nil {
		return models.NewCart(), nil
	}
	return user.Cart, nil
}

// ReplaceCart overwrites the cart with exactly the given mapping
func (s *CartService) ReplaceCart(ctx context.Context, userID string, cart models.Cart) error {
	ctx, span := util.StartSpan(ctx, "CartService.ReplaceCart")
	defer span.End()

	if cart == nil {
		return fmt.Errorf("%w: cart is required", ErrValidation)
	}
	for slot, qty := range cart {
		if !models.ValidSlot(slot) {
			return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
		}
		if qty < 0 {
			return fmt.Errorf("%w: negative quantity %d in slot %d", ErrValidation, qty, slot)
		}
	}

	replacement := cart.Clone()
	return s.mutate(ctx, userID, "replace", func(models.Cart) models.Cart {
		return replacement.Clone()
	})
}

func (s *CartService) mutate(ctx context.Context, userID, op string, apply func(models.Cart) models.Cart) error {
	if s.mode == CartLastWriteWins {
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return storeErr("failed to load cart", err)
		}
		if err := s.users.SaveCart(ctx, userID, apply(cartOf(user))); err != nil {
			return storeErr("failed to save cart", err)
		}
		util.CartMutationsTotal.WithLabelValues(op).Inc()
		return nil
	}

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return storeErr("failed to load cart", err)
		}

		swapped, err := s.users.SwapCart(ctx, userID, user.CartVersion, apply(cartOf(user)))
		if err != nil {
			return storeErr("failed to save cart", err)
		}
		if swapped {
			util.CartMutationsTotal.WithLabelValues(op).Inc()
			return nil
		}

		util.CartConflictsTotal.Inc()
		s.logger.Debug("Cart version changed, retrying",
			zap.String("user_id", userID),
			zap.String("op", op),
			zap.Int("attempt", attempt+1))
	}

	s.logger.Warn("Cart write gave up after retries",
		zap.String("user_id", userID),
		zap.String("op", op),
		zap.Int("retries", s.maxRetries))
	return ErrCartConflict
}

func cartOf(user *models.User) models.Cart {
	if user.Cart == nil {
		return models.NewCart()
	}
	return user.Cart.Clone()
}
