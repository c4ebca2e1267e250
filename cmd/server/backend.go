package main

import (
	"context"
	"fmt"
	"time"

	"storefront-service/config"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/store/memstore"
	"storefront-service/internal/store/mongostore"
)

// backend is one storage engine serving every repository
type backend interface {
	service.UserRepository
	service.ProductRepository
	service.OrderRepository
	Ping(ctx context.Context) error
	Close() error
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig) (backend, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := store.NewStore(cfg.URL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil

	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		database, err := mongostore.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		db := mongostore.NewStore(database)
		if cfg.AutoMigrate {
			if err := db.CreateIndexes(connectCtx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil

	case "memory":
		return memstore.New(), nil

	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.Driver)
	}
}
