// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mariposa-labs/storefront/internal/core"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Line is a resolved request line: which product, how many.
type Line struct {
	ProductID string
	Quantity  int
}

type Repository interface {
	PlaceOrder(ctx context.Context, userID string, lines []Line) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*Order, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// PlaceOrder runs the whole placement in one transaction. Each product row
// is locked with FOR UPDATE before the stock check, so concurrent orders
// serialize on the rows they share and a failed line rolls back every
// decrement made for earlier lines.
func (r *repository) PlaceOrder(
	ctx context.Context,
	userID string,
	lines []Line,
) (*Order, error) {
	order := &Order{
		ID:     uuid.New().String(),
		UserID: userID,
		Status: StatusPending,
	}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		total := decimal.Zero

		for _, line := range lines {
			var product struct {
				ID    string          `db:"id"`
				Name  string          `db:"name"`
				Price decimal.Decimal `db:"price"`
				Stock int             `db:"stock"`
			}

			err := tx.GetContext(ctx, &product,
				`SELECT id, name, price, stock
				 FROM products
				 WHERE id = $1
				 FOR UPDATE`,
				line.ProductID,
			)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
			}
			if err != nil {
				return fmt.Errorf("lock product %s: %w", line.ProductID, err)
			}

			if product.Stock < line.Quantity {
				return fmt.Errorf(
					"%w for product %q",
					ErrInsufficientStock,
					product.Name,
				)
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE products
				 SET stock = stock - $2, updated_at = NOW()
				 WHERE id = $1`,
				line.ProductID,
				line.Quantity,
			)
			if err != nil {
				return fmt.Errorf("decrement stock %s: %w", line.ProductID, err)
			}

			item := OrderItem{
				ID:          uuid.New().String(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
			}
			order.Items = append(order.Items, item)
			total = total.Add(item.Subtotal())
		}

		order.TotalAmount = total

		err := tx.GetContext(ctx, &order.OrderDate,
			`INSERT INTO orders (id, user_id, total_amount, status)
			 VALUES ($1, $2, $3, $4)
			 RETURNING order_date`,
			order.ID,
			order.UserID,
			order.TotalAmount,
			order.Status,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items
				     (id, order_id, product_id, product_name, quantity, price)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID,
				item.OrderID,
				item.ProductID,
				item.ProductName,
				item.Quantity,
				item.Price,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	var order Order
	err := r.db.GetContext(ctx, &order,
		`SELECT id, user_id, order_date, total_amount, status
		 FROM orders
		 WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT id, user_id, order_date, total_amount, status
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY order_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders for user: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT id, user_id, order_date, total_amount, status
		 FROM orders
		 ORDER BY order_date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*Order, error) {
	var order Order
	err := r.db.GetContext(ctx, &order,
		`UPDATE orders
		 SET status = $2
		 WHERE id = $1
		 RETURNING id, user_id, order_date, total_amount, status`,
		id,
		status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update order status: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *repository) loadItems(ctx context.Context, order *Order) error {
	err := r.db.SelectContext(ctx, &order.Items,
		`SELECT id, order_id, product_id, product_name, quantity, price
		 FROM order_items
		 WHERE order_id = $1`,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	return nil
}
