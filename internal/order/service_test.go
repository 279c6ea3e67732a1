// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariposa-labs/storefront/internal/auth"
	"github.com/mariposa-labs/storefront/internal/core"
)

// fakeRepo mimics the transactional placement over an in-memory product
// table: any failing line leaves every stock level untouched.
type fakeRepo struct {
	stock  map[string]int
	prices map[string]decimal.Decimal
	names  map[string]string
	orders map[string]*Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stock:  make(map[string]int),
		prices: make(map[string]decimal.Decimal),
		names:  make(map[string]string),
		orders: make(map[string]*Order),
	}
}

func (f *fakeRepo) addProduct(name string, price decimal.Decimal, stock int) string {
	id := uuid.New().String()
	f.stock[id] = stock
	f.prices[id] = price
	f.names[id] = name
	return id
}

func (f *fakeRepo) PlaceOrder(
	_ context.Context,
	userID string,
	lines []Line,
) (*Order, error) {
	for _, line := range lines {
		stock, ok := f.stock[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if stock < line.Quantity {
			return nil, fmt.Errorf(
				"%w for product %q",
				ErrInsufficientStock,
				f.names[line.ProductID],
			)
		}
	}

	order := &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrderDate: time.Now(),
		Status:    StatusPending,
	}

	total := decimal.Zero
	for _, line := range lines {
		f.stock[line.ProductID] -= line.Quantity
		item := OrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: f.names[line.ProductID],
			Quantity:    line.Quantity,
			Price:       f.prices[line.ProductID],
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Subtotal())
	}
	order.TotalAmount = total

	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	return order, nil
}

func (f *fakeRepo) ListByUser(
	_ context.Context,
	userID string,
) ([]Order, error) {
	var orders []Order
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]Order, error) {
	orders := make([]Order, 0, len(f.orders))
	for _, order := range f.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (f *fakeRepo) UpdateStatus(
	_ context.Context,
	id, status string,
) (*Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("update order status: %w", core.ErrNotFound)
	}
	order.Status = status
	return order, nil
}

type fakeUsers struct {
	ids map[string]bool
}

func (f *fakeUsers) GetByID(
	_ context.Context,
	id string,
) (*auth.UserInfo, error) {
	if !f.ids[id] {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &auth.UserInfo{ID: id, Email: id + "@example.com"}, nil
}

func newTestService() (*Service, *fakeRepo, string) {
	repo := newFakeRepo()
	userID := uuid.New().String()
	users := &fakeUsers{ids: map[string]bool{userID: true}}
	return NewService(repo, users), repo, userID
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, repo, userID := newTestService()
	productID := repo.addProduct("Widget", decimal.NewFromFloat(9.99), 3)

	order, err := svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: productID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, userID, order.UserID)
	assert.True(
		t,
		order.TotalAmount.Equal(decimal.NewFromFloat(19.98)),
		"total = %s", order.TotalAmount,
	)
	assert.Equal(t, 1, repo.stock[productID])

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "Widget", item.ProductName)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.Price.Equal(decimal.NewFromFloat(9.99)))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	svc, repo, userID := newTestService()
	productID := repo.addProduct("Widget", decimal.NewFromFloat(9.99), 1)

	_, err := svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: productID, Quantity: 2},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Widget")
	assert.Equal(t, 1, repo.stock[productID], "stock must not change")
}

func TestPlaceOrder_FailingLineLeavesStockUntouched(t *testing.T) {
	svc, repo, userID := newTestService()
	okID := repo.addProduct("Plenty", decimal.NewFromFloat(5.00), 10)
	scarceID := repo.addProduct("Scarce", decimal.NewFromFloat(5.00), 1)

	_, err := svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: okID, Quantity: 2},
		{ProductID: scarceID, Quantity: 5},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, repo.stock[okID])
	assert.Equal(t, 1, repo.stock[scarceID])
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	svc, _, userID := newTestService()

	_, err := svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: uuid.New().String(), Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	svc, repo, _ := newTestService()
	productID := repo.addProduct("Widget", decimal.NewFromFloat(9.99), 3)

	_, err := svc.PlaceOrder(
		context.Background(),
		uuid.New().String(),
		[]OrderItemRequest{{ProductID: productID, Quantity: 1}},
	)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPlaceOrder_RejectsEmptyAndNonPositive(t *testing.T) {
	svc, repo, userID := newTestService()
	productID := repo.addProduct("Widget", decimal.NewFromFloat(9.99), 3)

	_, err := svc.PlaceOrder(context.Background(), userID, nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: productID, Quantity: 0},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestGetOrder_Ownership(t *testing.T) {
	svc, repo, userID := newTestService()
	productID := repo.addProduct("Widget", decimal.NewFromFloat(9.99), 3)

	placed, err := svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: productID, Quantity: 1},
	})
	require.NoError(t, err)

	owner, err := svc.GetOrder(context.Background(), placed.ID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, owner.ID)

	_, err = svc.GetOrder(context.Background(), placed.ID, "someone-else", false)
	assert.ErrorIs(t, err, core.ErrForbidden)

	asAdmin, err := svc.GetOrder(context.Background(), placed.ID, "someone-else", true)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, asAdmin.ID)
}

func TestUpdateStatus(t *testing.T) {
	svc, repo, userID := newTestService()
	productID := repo.addProduct("Widget", decimal.NewFromFloat(9.99), 3)

	placed, err := svc.PlaceOrder(context.Background(), userID, []OrderItemRequest{
		{ProductID: productID, Quantity: 1},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), placed.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), uuid.New().String(), StatusPaid)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := OrderItem{
		Price:    decimal.NewFromFloat(9.99),
		Quantity: 2,
	}
	assert.True(t, item.Subtotal().Equal(decimal.NewFromFloat(19.98)))
}
