package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
)

// UserRepository persists accounts and their carts
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveCart(ctx context.Context, userID string, cart models.Cart) error
	// SwapCart writes cart only if the stored version still equals version.
	SwapCart(ctx context.Context, userID string, version int64, cart models.Cart) (bool, error)
}

// ProductRepository persists the catalog in insertion order
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*models.Product, error)
}

// OrderRepository persists orders
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	DeleteOrder(ctx context.Context, orderID string) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// IDSequence hands out product ids strictly above floor and above every id it returned before
type IDSequence interface {
	NextProductID(ctx context.Context, floor int64) (int64, error)
}

// CatalogCache holds the serialized catalog. SetCatalog must refuse the write
// once InvalidateCatalog has run since generation was read.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]byte, error)
	CatalogGeneration(ctx context.Context) (int64, error)
	SetCatalog(ctx context.Context, generation int64, data []byte) (bool, error)
	InvalidateCatalog(ctx context.Context) error
}

type IdempotencyStore interface {
	ReserveIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseIdempotencyKey(ctx context.Context, key string) error
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
}

// Notifier hands notification events to the delivery pipeline
type Notifier interface {
	PublishOrderConfirmed(ctx context.Context, event *models.OrderConfirmedEvent) error
	PublishFeedbackReceived(ctx context.Context, event *models.FeedbackReceivedEvent) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}
