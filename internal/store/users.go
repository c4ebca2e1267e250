package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/models"
)

const userColumns = "id, name, email, password, cart_data, cart_version, created_at"

// CreateUser inserts a new user. A taken email yields ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password, cart_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING cart_version, created_at`

	err := s.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Cart).
		Scan(&user.CartVersion, &user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveCart overwrites the user's cart regardless of concurrent writers
func (s *Store) SaveCart(ctx context.Context, userID string, cart models.Cart) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET cart_data = $1, cart_version = cart_version + 1 WHERE id = $2",
		cart, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}

// SwapCart writes cart only if the stored version still equals version.
// It reports false when another writer got there first.
func (s *Store) SwapCart(ctx context.Context, userID string, version int64, cart models.Cart) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET cart_data = $1, cart_version = cart_version + 1 WHERE id = $2 AND cart_version = $3",
		cart, userID, version)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
