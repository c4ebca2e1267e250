package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/util"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	newCollectionSize  = 8
	relatedProductSize = 4
	popularSize        = 4
)

// CatalogService handles product catalog business logic
type CatalogService struct {
	products ProductRepository
	sequence IDSequence
	cache    CatalogCache
	loads    singleflight.Group
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(products ProductRepository, sequence IDSequence, cache CatalogCache) *CatalogService {
	return &CatalogService{
		products: products,
		sequence: sequence,
		cache:    cache,
		validate: validator.New(),
		logger:   util.GetLogger(),
	}
}

// AddProductRequest represents a new catalog entry
type AddProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Image       string  `json:"image"`
	Category    string  `json:"category" validate:"required"`
	NewPrice    float64 `json:"new_price" validate:"gte=0"`
	OldPrice    float64 `json:"old_price" validate:"gte=0"`
	Description string  `json:"description"`
	Author      string  `json:"author"`
	Available   *bool   `json:"available,omitempty"`
}

// NextProductID returns the id for the next product. The floor is the id of
// the most recently inserted product, not the numeric maximum.
func (s *CatalogService) NextProductID(ctx context.Context) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.NextProductID")
	defer span.End()

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return 0, storeErr("failed to list products", err)
	}

	var floor int64
	if len(products) > 0 {
		floor = products[len(products)-1].ID
	}

	id, err := s.sequence.NextProductID(ctx, floor)
	if err != nil {
		return 0, fmt.Errorf("failed to advance product sequence: %w: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}

// AddProduct assigns an id and stores the product
func (s *CatalogService) AddProduct(ctx context.Context, req *AddProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddProduct")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return nil, validationErr(err)
	}

	id, err := s.NextProductID(ctx)
	if err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product := &models.Product{
		ID:          id,
		Name:        req.Name,
		Image:       req.Image,
		Category:    req.Category,
		NewPrice:    req.NewPrice,
		OldPrice:    req.OldPrice,
		Description: req.Description,
		Author:      req.Author,
		Available:   available,
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, storeErr("failed to create product", err)
	}

	s.invalidate(ctx)
	util.ProductsAddedTotal.Inc()
	s.logger.Info("Product added", zap.Int64("product_id", id), zap.String("name", product.Name))

	return product, nil
}

// RemoveProduct deletes the product with id and returns it
func (s *CatalogService) RemoveProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.RemoveProduct")
	defer span.End()

	product, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return nil, storeErr("failed to delete product", err)
	}

	s.invalidate(ctx)
	util.ProductsRemovedTotal.Inc()
	s.logger.Info("Product removed", zap.Int64("product_id", id))

	return product, nil
}

// ListProducts returns every product in insertion order
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	if s.cache == nil {
		products, err := s.products.ListProducts(ctx)
		if err != nil {
			return nil, storeErr("failed to list products", err)
		}
		return products, nil
	}

	data, err := s.cache.GetCatalog(ctx)
	switch {
	case err == nil:
		var products []models.Product
		if jsonErr := json.Unmarshal(data, &products); jsonErr == nil {
			util.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return products, nil
		}
		s.logger.Warn("Discarding undecodable catalog cache entry")
	case errors.Is(err, redisclient.ErrCacheMiss):
	default:
		s.logger.Warn("Catalog cache unavailable", zap.Error(err))
	}
	util.CatalogCacheTotal.WithLabelValues("miss").Inc()

	gen, err := s.cache.CatalogGeneration(ctx)
	if err != nil {
		s.logger.Warn("Catalog cache unavailable", zap.Error(err))
		products, err := s.products.ListProducts(ctx)
		if err != nil {
			return nil, storeErr("failed to list products", err)
		}
		return products, nil
	}

	// Callers that saw a newer generation must not share an older load.
	v, err, _ := s.loads.Do(fmt.Sprintf("catalog:%d", gen), func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		products, err := s.products.ListProducts(loadCtx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(products); err == nil {
			stored, err := s.cache.SetCatalog(loadCtx, gen, data)
			switch {
			case err != nil:
				s.logger.Warn("Failed to cache catalog", zap.Error(err))
			case !stored:
				s.logger.Debug("Catalog changed during load, not caching", zap.Int64("generation", gen))
			}
		}
		return products, nil
	})
	if err != nil {
		return nil, storeErr("failed to list products", err)
	}

	shared := v.([]models.Product)
	products := make([]models.Product, len(shared))
	copy(products, shared)
	return products, nil
}

// NewCollections returns the latest products, skipping the very first one
func (s *CatalogService) NewCollections(ctx context.Context) ([]models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return tail(skipFirst(products), newCollectionSize), nil
}

// RelatedProducts returns the last four products, skipping the very first one
func (s *CatalogService) RelatedProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return tail(skipFirst(products), relatedProductSize), nil
}

// PopularInCategory returns the first four products of category
func (s *CatalogService) PopularInCategory(ctx context.Context, category string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.PopularInCategory")
	defer span.End()

	products, err := s.products.ListProductsByCategory(ctx, category)
	if err != nil {
		return nil, storeErr("failed to list products by category", err)
	}
	if len(products) > popularSize {
		products = products[:popularSize]
	}
	return products, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}

func skipFirst(products []models.Product) []models.Product {
	if len(products) <= 1 {
		return []models.Product{}
	}
	return products[1:]
}

func tail(products []models.Product, n int) []models.Product {
	if len(products) > n {
		return products[len(products)-n:]
	}
	return products
}
