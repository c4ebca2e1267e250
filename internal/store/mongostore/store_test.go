package mongostore

import (
	"context"
	"fmt"
	"testing"

	"storefront-service/internal/store/storetest"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func TestMongoStore(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	n := 0
	storetest.Run(t, func(t *testing.T) storetest.Repository {
		n++
		db, err := ConnectMongoDB(ctx, uri, fmt.Sprintf("storefront_%d", n))
		require.NoError(t, err)

		s := NewStore(db)
		require.NoError(t, s.CreateIndexes(ctx))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
