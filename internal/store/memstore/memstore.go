// Package memstore is an in-process implementation of the storefront
// repositories, used for local development and tests.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	emails   map[string]string
	products []models.Product
	orders   map[string]*models.Order
	orderIDs []string
}

func New() *Store {
	return &Store{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		orders: make(map[string]*models.Order),
	}
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user repository: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return store.ErrDuplicateEmail
	}

	user.CreatedAt = time.Now()
	clone := cloneUser(user)
	s.users[user.ID] = clone
	s.emails[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, id)
	}
	return cloneUser(user), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) SaveCart(_ context.Context, userID string, cart models.Cart) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrUserNotFound, userID)
	}
	user.Cart = cart.Clone()
	user.CartVersion++
	return nil
}

func (s *Store) SwapCart(_ context.Context, userID string, version int64, cart models.Cart) (bool, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.CartVersion != version {
		return false, nil
	}
	user.Cart = cart.Clone()
	user.CartVersion++
	return true, nil
}

func (s *Store) CreateProduct(_ context.Context, product *models.Product) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID == product.ID {
			return fmt.Errorf("%w: product %d", store.ErrDuplicateID, product.ID)
		}
	}

	product.Date = time.Now()
	s.products = append(s.products, *product)
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Product{}, s.products...), nil
}

func (s *Store) ListProductsByCategory(_ context.Context, category string) ([]models.Product, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := []models.Product{}
	for _, p := range s.products {
		if p.Category == category {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) (*models.Product, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", store.ErrProductNotFound, id)
}

func (s *Store) CreateOrder(_ context.Context, order *models.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("%w: order %s", store.ErrDuplicateID, order.ID)
	}

	order.CreatedAt = time.Now()
	s.orders[order.ID] = cloneOrder(order)
	s.orderIDs = append(s.orderIDs, order.ID)
	return nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*models.Order, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, id)
	}
	return cloneOrder(order), nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, orderID, status string) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderID)
	}
	order.Status = status
	return nil
}

func (s *Store) DeleteOrder(_ context.Context, orderID string) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil
	}
	delete(s.orders, orderID)
	for i, id := range s.orderIDs {
		if id == orderID {
			s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListOrders(_ context.Context) ([]models.Order, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		orders = append(orders, *cloneOrder(s.orders[id]))
	}
	return orders, nil
}

func cloneUser(user *models.User) *models.User {
	clone := *user
	clone.Cart = user.Cart.Clone()
	return &clone
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = append(models.LineItems(nil), order.Items...)
	return &clone
}
