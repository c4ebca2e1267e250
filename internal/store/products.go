package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/models"
)

const productColumns = "id, name, image, category, new_price, old_price, description, author, date, available"

// CreateProduct inserts a product with a caller-assigned id
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, image, category, new_price, old_price, description, author, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING date`

	err := s.db.QueryRowxContext(ctx, query,
		product.ID, product.Name, product.Image, product.Category, product.NewPrice,
		product.OldPrice, product.Description, product.Author, product.Available).
		Scan(&product.Date)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: product %d", ErrDuplicateID, product.ID)
	}
	return err
}

// ListProducts retrieves all products in insertion order
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, "SELECT "+productColumns+" FROM products ORDER BY seq")
	return products, err
}

// ListProductsByCategory retrieves the products of one category in insertion order
func (s *Store) ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products WHERE category = $1 ORDER BY seq", category)
	return products, err
}

// DeleteProduct removes a product and returns what was removed
func (s *Store) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"DELETE FROM products WHERE id = $1 RETURNING "+productColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
