// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Stock     int             `db:"stock"`
	ImageURL  *string         `db:"image_url"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
