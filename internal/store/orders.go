package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/models"
)

const orderColumns = "id, name, email, address, city, phone_number, items, total, status, created_at"

// CreateOrder creates a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, name, email, address, city, phone_number, items, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return s.db.QueryRowxContext(ctx, query,
		order.ID, order.Name, order.Email, order.Address, order.City,
		order.PhoneNumber, order.Items, order.Total, order.Status).
		Scan(&order.CreatedAt)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil
}

// DeleteOrder removes an order. Removing an unknown id is not an error.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	return err
}

// ListOrders retrieves every order, oldest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, "SELECT "+orderColumns+" FROM orders ORDER BY created_at")
	return orders, err
}
