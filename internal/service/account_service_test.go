package service

import (
	"context"
	"testing"

	"storefront-service/internal/auth"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unavailableUsers struct {
	UserRepository
}

func (unavailableUsers) CreateUser(context.Context, *models.User) error {
	return errConnRefused
}

func (unavailableUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, errConnRefused
}

func newAccountService(t *testing.T) (*AccountService, *memstore.Store, *auth.Gate) {
	t.Helper()
	gate, err := auth.NewGate("test-secret")
	require.NoError(t, err)
	users := memstore.New()
	return NewAccountService(users, gate), users, gate
}

func TestSignup_CreatesUserWithEmptyCart(t *testing.T) {
	svc, users, gate := newAccountService(t)
	ctx := context.Background()

	token, err := svc.Signup(ctx, "olena", "olena@example.com", "pw")
	require.NoError(t, err)

	userID, err := gate.Authenticate(token)
	require.NoError(t, err)

	user, err := users.GetUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "olena", user.Name)
	assert.Len(t, user.Cart, models.CartSlots)
	for slot, qty := range user.Cart {
		assert.Zero(t, qty, "slot %d", slot)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a", "dup@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "b", "dup@example.com", "other")
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestSignup_RequiresEmailAndPassword(t *testing.T) {
	svc, _, _ := newAccountService(t)

	_, err := svc.Signup(context.Background(), "a", "", "pw")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Signup(context.Background(), "a", "a@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _, gate := newAccountService(t)
	ctx := context.Background()

	signupToken, err := svc.Signup(ctx, "olena", "olena@example.com", "pw")
	require.NoError(t, err)
	signupUser, err := gate.Authenticate(signupToken)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		token, err := svc.Login(ctx, "olena@example.com", "pw")
		require.NoError(t, err)
		userID, err := gate.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, signupUser, userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "olena@example.com", "PW")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "pw")
		assert.ErrorIs(t, err, ErrUnknownEmail)
	})
}

func TestAccount_StoreUnavailable(t *testing.T) {
	gate, err := auth.NewGate("test-secret")
	require.NoError(t, err)
	svc := NewAccountService(unavailableUsers{}, gate)

	_, err = svc.Signup(context.Background(), "a", "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Login(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
