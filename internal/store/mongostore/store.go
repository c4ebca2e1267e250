package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

// Store is the MongoDB backend for users, products and orders
type Store struct {
	db       *mongo.Database
	users    *mongo.Collection
	products *mongo.Collection
	orders   *mongo.Collection
}

// NewStore wraps a connected database
func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		users:    db.Collection("users"),
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
	}
}

// CreateIndexes creates the unique indexes the repositories rely on
func (s *Store) CreateIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	if _, err := s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "_id", Value: 1}},
		},
	}); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}

	if _, err := s.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	return nil
}

// Ping checks the server connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Client().Disconnect(ctx)
}

// CreateUser inserts a new user. A taken email yields store.ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()

	_, err := s.users.InsertOne(ctx, toUserDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id}, id)
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email}, email)
}

func (s *Store) findUser(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toModel(), nil
}

// SaveCart overwrites the user's cart regardless of concurrent writers
func (s *Store) SaveCart(ctx context.Context, userID string, cart models.Cart) error {
	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": bson.M{"cartData": encodeCart(cart)},
			"$inc": bson.M{"cartVersion": 1},
		})
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", store.ErrUserNotFound, userID)
	}
	return nil
}

// SwapCart writes cart only if the stored version still equals version
func (s *Store) SwapCart(ctx context.Context, userID string, version int64, cart models.Cart) (bool, error) {
	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "cartVersion": version},
		bson.M{
			"$set": bson.M{"cartData": encodeCart(cart)},
			"$inc": bson.M{"cartVersion": 1},
		})
	if err != nil {
		return false, fmt.Errorf("failed to swap cart: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// CreateProduct inserts a product with a caller-assigned id
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Date = time.Now().UTC()

	_, err := s.products.InsertOne(ctx, toProductDocument(product))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: product %d", store.ErrDuplicateID, product.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// ListProducts retrieves all products in insertion order
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{})
}

// ListProductsByCategory retrieves one category's products in insertion order
func (s *Store) ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{"category": category})
}

func (s *Store) findProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	// ObjectIDs grow with insertion time
	cursor, err := s.products.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}
	return products, nil
}

// DeleteProduct removes a product and returns what was removed
func (s *Store) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	var doc productDocument
	err := s.products.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %d", store.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	product := doc.toModel()
	return &product, nil
}

// CreateOrder creates a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now().UTC()

	if _, err := s.orders.InsertOne(ctx, toOrderDocument(order)); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var doc orderDocument
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order := doc.toModel()
	return &order, nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	result, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderID)
	}
	return nil
}

// DeleteOrder removes an order. Removing an unknown id is not an error.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.orders.DeleteOne(ctx, bson.M{"_id": orderID}); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// ListOrders retrieves every order, oldest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	cursor, err := s.orders.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toModel())
	}
	return orders, nil
}
