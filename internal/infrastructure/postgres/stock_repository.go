package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo proyección de stock sobre la fila del producto. Se usa siempre
// dentro de una transacción del ledger (TxRunner).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE) para
// serializar escrituras concurrentes sobre el mismo producto.
func (r *StockRepo) GetForUpdate(productID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// ApplyDelta suma delta al stock del producto. La guarda stock + delta >= 0 va
// en el propio UPDATE: si no afecta filas y el producto existe, el delta
// dejaría el stock negativo.
func (r *StockRepo) ApplyDelta(productID string, delta int64) error {
	query := `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0`
	tag, err := r.q.Exec(context.Background(), query, productID, delta)
	if err != nil {
		return fmt.Errorf("apply stock delta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(context.Background(),
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}
