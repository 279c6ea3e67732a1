// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name     string          `json:"name"      validate:"required,min=1,max=255"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"     validate:"gte=0"`
	ImageURL *string         `json:"image_url" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name     string          `json:"name"      validate:"required,min=1,max=255"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"     validate:"gte=0"`
	ImageURL *string         `json:"image_url" validate:"omitempty,url"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  *string         `json:"image_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses
}
