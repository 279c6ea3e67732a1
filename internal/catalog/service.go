// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariposa-labs/storefront/internal/core"
)

// DefaultLowStockThreshold is used when a report request does not name one.
const DefaultLowStockThreshold = 5

const productListCacheKey = "catalog:products"

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	cache Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *Service) CreateProduct(
	ctx context.Context,
	name string,
	price decimal.Decimal,
	stock int,
	imageURL *string,
) (*Product, error) {
	if err := validateProduct(price, stock); err != nil {
		return nil, err
	}

	product := &Product{
		ID:       uuid.New().String(),
		Name:     name,
		Price:    price,
		Stock:    stock,
		ImageURL: imageURL,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	return product, nil
}

func (s *Service) GetProduct(
	ctx context.Context,
	id string,
) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts serves the catalog from the cache when possible. A stale or
// unreachable cache never fails the request.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, productListCacheKey); ok {
			var products []Product
			if err := json.Unmarshal(raw, &products); err == nil {
				return products, nil
			}
			s.cache.Delete(ctx, productListCacheKey)
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(products); err == nil {
			s.cache.Set(ctx, productListCacheKey, raw, s.cacheTTL)
		}
	}

	return products, nil
}

func (s *Service) ListLowStock(
	ctx context.Context,
	threshold int,
) ([]Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	return s.repo.ListLowStock(ctx, threshold)
}

func (s *Service) UpdateProduct(
	ctx context.Context,
	id string,
	name string,
	price decimal.Decimal,
	stock int,
	imageURL *string,
) (*Product, error) {
	if err := validateProduct(price, stock); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = name
	product.Price = price
	product.Stock = stock
	product.ImageURL = imageURL

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateListCache(ctx)

	return nil
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, productListCacheKey)
	}
}

func validateProduct(price decimal.Decimal, stock int) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", core.ErrInvalidInput)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", core.ErrInvalidInput)
	}
	return nil
}
