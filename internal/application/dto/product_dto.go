package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products. El stock inicia en 0 y
// solo cambia vía movimientos.
type CreateProductRequest struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
	MinStock int64           `json:"min_stock"`
}

// UpdateProductRequest body para PUT /api/products/:id. Campos nil no se
// tocan. El SKU es inmutable: enviarlo con otro valor es un error.
type UpdateProductRequest struct {
	SKU      *string          `json:"sku,omitempty"`
	Name     *string          `json:"name,omitempty"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	MinStock *int64           `json:"min_stock,omitempty"`
}

// ProductDTO representación de un producto en respuestas.
type ProductDTO struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	MinStock  int64           `json:"min_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
