package memstore

import (
	"context"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Repository {
		return New()
	})
}

func TestReadsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "u1@example.com", Cart: models.NewCart()}
	require.NoError(t, s.CreateUser(ctx, user))
	user.Cart.Increment(1)

	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	got.Cart.Increment(2)

	again, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Cart[1])
	assert.Equal(t, 0, again.Cart[2])
}
