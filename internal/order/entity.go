// AngelaMos | 2026
// entity.go

package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

type Order struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	OrderDate   time.Time       `db:"order_date"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	Items       []OrderItem     `db:"-"`
}

// OrderItem snapshots the product name and unit price at purchase time,
// so later catalog edits never rewrite order history.
type OrderItem struct {
	ID          string          `db:"id"`
	OrderID     string          `db:"order_id"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
