// Package storetest holds the behaviour every storefront backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Repository is the full method set of a storefront backend
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveCart(ctx context.Context, userID string, cart models.Cart) error
	SwapCart(ctx context.Context, userID string, version int64, cart models.Cart) (bool, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*models.Product, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	DeleteOrder(ctx context.Context, orderID string) error
	ListOrders(ctx context.Context) ([]models.Order, error)

	Ping(ctx context.Context) error
}

// Run exercises repo. newRepo must return an empty backend on every call.
func Run(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("Carts", func(t *testing.T) { testCarts(t, newRepo(t)) })
	t.Run("Products", func(t *testing.T) { testProducts(t, newRepo(t)) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, newRepo(t)) })
}

func newUser(id, email string) *models.User {
	return &models.User{ID: id, Name: "n-" + id, Email: email, Password: "pw", Cart: models.NewCart()}
}

func testUsers(t *testing.T, repo Repository) {
	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))

	user := newUser("u1", "u1@example.com")
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", byID.Email)
	assert.Equal(t, "pw", byID.Password)
	assert.Equal(t, models.NewCart(), byID.Cart)

	byEmail, err := repo.GetUserByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	err = repo.CreateUser(ctx, newUser("u2", "u1@example.com"))
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = repo.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testCarts(t *testing.T, repo Repository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, newUser("u1", "u1@example.com")))

	user, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	version := user.CartVersion

	cart := user.Cart.Clone()
	cart.Increment(5)
	ok, err := repo.SwapCart(ctx, "u1", version, cart)
	require.NoError(t, err)
	assert.True(t, ok)

	stale := user.Cart.Clone()
	stale.Increment(6)
	ok, err = repo.SwapCart(ctx, "u1", version, stale)
	require.NoError(t, err)
	assert.False(t, ok, "write with stale version must not apply")

	user, err = repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Cart[5])
	assert.Equal(t, 0, user.Cart[6])
	assert.Equal(t, version+1, user.CartVersion)

	require.NoError(t, repo.SaveCart(ctx, "u1", models.Cart{0: 3}))
	user, err = repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.Cart{0: 3}, user.Cart)
	assert.Equal(t, version+2, user.CartVersion)

	assert.ErrorIs(t, repo.SaveCart(ctx, "missing", models.Cart{}), store.ErrUserNotFound)

	ok, err = repo.SwapCart(ctx, "missing", 0, models.Cart{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func testProducts(t *testing.T, repo Repository) {
	ctx := context.Background()

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	// Insertion order, not id order.
	for _, p := range []models.Product{
		{ID: 7, Name: "seven", Category: "dc", NewPrice: 10, OldPrice: 12, Available: true},
		{ID: 2, Name: "two", Category: "marvel", NewPrice: 5, OldPrice: 6, Available: true},
		{ID: 9, Name: "nine", Category: "dc", NewPrice: 1, OldPrice: 1, Available: false},
	} {
		p := p
		require.NoError(t, repo.CreateProduct(ctx, &p))
		assert.False(t, p.Date.IsZero())
	}

	err = repo.CreateProduct(ctx, &models.Product{ID: 7, Name: "again"})
	assert.ErrorIs(t, err, store.ErrDuplicateID)

	products, err = repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []int64{7, 2, 9}, []int64{products[0].ID, products[1].ID, products[2].ID})
	assert.Equal(t, "seven", products[0].Name)
	assert.Equal(t, 10.0, products[0].NewPrice)
	assert.False(t, products[2].Available)

	dc, err := repo.ListProductsByCategory(ctx, "dc")
	require.NoError(t, err)
	require.Len(t, dc, 2)
	assert.Equal(t, int64(7), dc[0].ID)
	assert.Equal(t, int64(9), dc[1].ID)

	removed, err := repo.DeleteProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "two", removed.Name)

	_, err = repo.DeleteProduct(ctx, 2)
	assert.ErrorIs(t, err, store.ErrProductNotFound)

	products, err = repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func testOrders(t *testing.T, repo Repository) {
	ctx := context.Background()

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	order := &models.Order{
		ID:          "o1",
		Name:        "Olena",
		Email:       "olena@example.com",
		Address:     "Khreshchatyk 1",
		City:        "Kyiv",
		PhoneNumber: "+380441234567",
		Items: models.LineItems{
			{ProductID: 3, Name: "Batman #1", Price: 150, Quantity: 2, Extra: map[string]interface{}{"image": "a.png"}},
		},
		Total:  300,
		Status: models.OrderStatusPending,
	}
	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.False(t, order.CreatedAt.IsZero())

	got, err := repo.GetOrderByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Olena", got.Name)
	assert.Equal(t, "+380441234567", got.PhoneNumber)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	assert.Equal(t, 300.0, got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Batman #1", got.Items[0].Name)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "a.png", got.Items[0].Extra["image"])

	require.NoError(t, repo.UpdateOrderStatus(ctx, "o1", models.OrderStatusConfirmed))
	got, err = repo.GetOrderByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)

	assert.ErrorIs(t, repo.UpdateOrderStatus(ctx, "missing", models.OrderStatusConfirmed), store.ErrOrderNotFound)
	_, err = repo.GetOrderByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	second := &models.Order{ID: "o2", Name: "Taras", Email: "t@example.com", Items: models.LineItems{{Name: "Saga", Price: 1, Quantity: 1}}, Status: models.OrderStatusPending}
	require.NoError(t, repo.CreateOrder(ctx, second))

	orders, err = repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "o2", orders[1].ID)

	require.NoError(t, repo.DeleteOrder(ctx, "o1"))
	require.NoError(t, repo.DeleteOrder(ctx, "o1"))
	_, err = repo.GetOrderByID(ctx, "o1")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}
