// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariposa-labs/storefront/internal/core"
)

type fakeRepo struct {
	products  map[string]*Product
	listCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: make(map[string]*Product)}
}

func (f *fakeRepo) Create(_ context.Context, product *Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	clone := *product
	f.products[product.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	clone := *product
	return &clone, nil
}

func (f *fakeRepo) List(_ context.Context) ([]Product, error) {
	f.listCalls++
	products := make([]Product, 0, len(f.products))
	for _, product := range f.products {
		products = append(products, *product)
	}
	return products, nil
}

func (f *fakeRepo) ListLowStock(
	_ context.Context,
	threshold int,
) ([]Product, error) {
	var products []Product
	for _, product := range f.products {
		if product.Stock < threshold {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (f *fakeRepo) Update(_ context.Context, product *Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	product.UpdatedAt = time.Now().UTC()
	clone := *product
	f.products[product.ID] = &clone
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}
	delete(f.products, id)
	return nil
}

type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *memoryCache) Set(
	_ context.Context,
	key string,
	value []byte,
	_ time.Duration,
) {
	c.entries[key] = value
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	delete(c.entries, key)
}

func newTestService() (*Service, *fakeRepo, *memoryCache) {
	repo := newFakeRepo()
	cache := newMemoryCache()
	svc := NewService(repo, cache, time.Minute, slog.Default())
	return svc, repo, cache
}

func TestCreateProduct_RejectsNegativePrice(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateProduct(
		context.Background(),
		"Widget",
		decimal.NewFromFloat(-1.00),
		5,
		nil,
	)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateProduct_RejectsNegativeStock(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateProduct(
		context.Background(),
		"Widget",
		decimal.NewFromFloat(9.99),
		-1,
		nil,
	)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateProduct_AssignsID(t *testing.T) {
	svc, repo, _ := newTestService()

	product, err := svc.CreateProduct(
		context.Background(),
		"Widget",
		decimal.NewFromFloat(9.99),
		5,
		nil,
	)
	require.NoError(t, err)
	assert.NoError(t, uuid.Validate(product.ID))
	assert.Contains(t, repo.products, product.ID)
}

func TestListProducts_CachesSecondRead(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, "Widget", decimal.NewFromFloat(9.99), 5, nil)
	require.NoError(t, err)

	first, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	second, err := svc.ListProducts(ctx)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)
}

func TestWrites_InvalidateListCache(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	product, err := svc.CreateProduct(
		ctx,
		"Widget",
		decimal.NewFromFloat(9.99),
		5,
		nil,
	)
	require.NoError(t, err)

	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	_, err = svc.UpdateProduct(
		ctx,
		product.ID,
		"Widget v2",
		decimal.NewFromFloat(12.50),
		3,
		nil,
	)
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget v2", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromFloat(12.50)))
}

func TestListLowStock_DefaultThreshold(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, "Scarce", decimal.NewFromFloat(1.00), 2, nil)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, "Plenty", decimal.NewFromFloat(1.00), 50, nil)
	require.NoError(t, err)

	products, err := svc.ListLowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Scarce", products[0].Name)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.DeleteProduct(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, core.ErrNotFound)
}
