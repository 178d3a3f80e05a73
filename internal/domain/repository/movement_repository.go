package repository

import (
	"time"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// KardexEntry resultado crudo del repositorio para el historial de un producto:
// línea de movimiento unida a los datos de su cabecera.
type KardexEntry struct {
	Detail entity.MovementDetail
	Header entity.MovementHeader
}

// MovementRepository define el puerto de persistencia para cabeceras y líneas
// de movimiento. Las operaciones de escritura se usan siempre dentro de una
// transacción (TxRunner) junto con StockRepository.
type MovementRepository interface {
	CreateHeader(header *entity.MovementHeader) error
	GetHeader(id string) (*entity.MovementHeader, error)
	UpdateHeader(header *entity.MovementHeader) error
	// DeleteHeader elimina la cabecera y todas sus líneas.
	DeleteHeader(id string) error
	ListHeaders(from, to *time.Time, limit, offset int) ([]*entity.MovementHeader, error)

	CreateDetail(detail *entity.MovementDetail) error
	GetDetail(id string) (*entity.MovementDetail, error)
	DeleteDetail(id string) error
	ListDetailsByHeader(movementID string) ([]*entity.MovementDetail, error)

	// ListKardexByProduct lista el historial de un producto ordenado por fecha
	// de movimiento descendente.
	ListKardexByProduct(productID string, from, to *time.Time, limit, offset int) ([]KardexEntry, error)

	// LastDetailByProduct devuelve la línea del movimiento más reciente (por
	// fecha de cabecera) para el producto, o nil si no tiene historial.
	LastDetailByProduct(productID string) (*entity.MovementDetail, error)
}
