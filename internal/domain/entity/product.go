package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock materializado.
// SKU es inmutable después de la creación. Stock solo se muta a través del
// ledger de movimientos; nunca directamente.
type Product struct {
	ID        string
	SKU       string // código único, inmutable
	Name      string
	Cost      decimal.Decimal // costo de catálogo (fallback para costo base)
	Price     decimal.Decimal // precio de venta
	Stock     int64           // unidades actuales, nunca negativo
	MinStock  int64           // punto de reorden
	CreatedAt time.Time
	UpdatedAt time.Time
}
