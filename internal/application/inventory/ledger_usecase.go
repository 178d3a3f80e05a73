package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// LedgerUseCase es la única fuente de verdad para todo evento que afecta stock.
// Cada operación corre como una unidad indivisible (TxRunner): cabecera, líneas
// y deltas de stock se aplican todos o ninguno.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	costCache   CostCache // puede ser nil
}

// NewLedgerUseCase construye el caso de uso. costCache es opcional (nil = sin caché).
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	costCache CostCache,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		costCache:   costCache,
	}
}

// MovementLine una línea de entrada para crear/actualizar un movimiento.
type MovementLine struct {
	ProductID string
	Quantity  int64
	UnitCost  decimal.Decimal
	NewPrice  *decimal.Decimal // solo IN
}

// CreateMovementInput entrada para CreateMovement.
type CreateMovementInput struct {
	UserID         string
	Type           string // IN u OUT
	Concept        string
	Reason         string
	Lines          []MovementLine
	AuditSessionID *string
}

// validConcepts conceptos aceptados en cabecera.
var validConcepts = map[string]bool{
	entity.ConceptCompra:          true,
	entity.ConceptVenta:           true,
	entity.ConceptDevolucion:      true,
	entity.ConceptMerma:           true,
	entity.ConceptAuditoria:       true,
	entity.ConceptAuditoriaRapida: true,
	entity.ConceptOtro:            true,
}

// validateLines valida tipo, concepto y líneas antes de abrir transacción.
func validateLines(movType, concept string, lines []MovementLine) error {
	if movType != entity.MovementTypeIN && movType != entity.MovementTypeOUT {
		return domain.ErrInvalidInput
	}
	if concept != "" && !validConcepts[concept] {
		return domain.ErrInvalidInput
	}
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 || l.UnitCost.IsNegative() {
			return domain.ErrInvalidInput
		}
		if l.NewPrice != nil {
			if movType != entity.MovementTypeIN || l.NewPrice.IsNegative() {
				return domain.ErrInvalidInput
			}
		}
	}
	return nil
}

// CreateMovement persiste cabecera y líneas, y aplica el delta de stock de cada
// producto (+cantidad en IN, -cantidad en OUT). Si una salida dejaría stock
// negativo, toda la operación se rechaza sin escrituras parciales. En entradas
// con NewPrice se sobreescribe el precio de venta del producto.
// Devuelve el ID de la nueva cabecera.
func (uc *LedgerUseCase) CreateMovement(ctx context.Context, input CreateMovementInput) (string, error) {
	if err := validateLines(input.Type, input.Concept, input.Lines); err != nil {
		return "", err
	}
	concept := input.Concept
	if concept == "" {
		concept = entity.ConceptOtro
	}

	now := time.Now()
	headerID := uuid.New().String()

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		details := make([]*entity.MovementDetail, 0, len(input.Lines))
		for _, l := range input.Lines {
			details = append(details, &entity.MovementDetail{
				MovementID: headerID,
				ProductID:  l.ProductID,
				Quantity:   l.Quantity,
				UnitCost:   l.UnitCost,
				NewPrice:   l.NewPrice,
			})
		}
		header := &entity.MovementHeader{
			ID:             headerID,
			Type:           input.Type,
			Concept:        concept,
			Reason:         input.Reason,
			Date:           now,
			TotalCost:      kardex.TotalCost(details),
			AuditSessionID: input.AuditSessionID,
			CreatedAt:      now,
			CreatedBy:      input.UserID,
		}
		if err := movRepo.CreateHeader(header); err != nil {
			return err
		}
		for i, d := range details {
			if err := movRepo.CreateDetail(d); err != nil {
				return err
			}
			if err := uc.applyLine(stockRepo, productRepo, input.Type, input.Lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	uc.invalidateCosts(ctx, lineProductIDs(input.Lines))
	return headerID, nil
}

// applyLine bloquea la fila del producto, aplica el delta con guarda de
// negativos y actualiza el precio de venta si la entrada lo trae.
func (uc *LedgerUseCase) applyLine(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movType string,
	line MovementLine,
) error {
	product, err := stockRepo.GetForUpdate(line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	delta := line.Quantity
	if movType == entity.MovementTypeOUT {
		delta = -delta
	}
	if err := stockRepo.ApplyDelta(line.ProductID, delta); err != nil {
		if err == domain.ErrInsufficientStock {
			return fmt.Errorf("producto %s: %w", product.SKU, domain.ErrInsufficientStock)
		}
		return err
	}
	if movType == entity.MovementTypeIN && line.NewPrice != nil {
		if err := productRepo.UpdatePrice(line.ProductID, *line.NewPrice); err != nil {
			return err
		}
	}
	return nil
}

// reverseDetails revierte el efecto de stock de un conjunto de líneas ya
// persistidas. conflictErr es el error a devolver si la reversa dejaría un
// producto en negativo (movimientos posteriores ya consumieron ese stock).
func reverseDetails(
	stockRepo repository.StockRepository,
	headerType string,
	details []*entity.MovementDetail,
	conflictErr error,
) error {
	for _, d := range details {
		if err := stockRepo.ApplyDelta(d.ProductID, -d.SignedQuantity(headerType)); err != nil {
			if err == domain.ErrInsufficientStock {
				return fmt.Errorf("producto %s: %w", d.ProductID, conflictErr)
			}
			return err
		}
	}
	return nil
}

// UpdateMovementInput entrada para UpdateMovement: el nuevo set de líneas
// reemplaza por completo al anterior. El creador original de la cabecera
// se preserva.
type UpdateMovementInput struct {
	Type    string
	Concept string
	Reason  string
	Lines   []MovementLine
}

// UpdateMovement revierte el efecto actual del movimiento y reaplica el nuevo
// set de líneas como una sola unidad atómica. Si la reaplicación dejaría stock
// negativo, la operación completa falla y el estado previo queda intacto.
func (uc *LedgerUseCase) UpdateMovement(ctx context.Context, movementID string, input UpdateMovementInput) error {
	if err := validateLines(input.Type, input.Concept, input.Lines); err != nil {
		return err
	}
	concept := input.Concept
	if concept == "" {
		concept = entity.ConceptOtro
	}

	var oldProductIDs []string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		header, err := movRepo.GetHeader(movementID)
		if err != nil {
			return err
		}
		if header == nil {
			return domain.ErrNotFound
		}
		oldDetails, err := movRepo.ListDetailsByHeader(movementID)
		if err != nil {
			return err
		}
		oldProductIDs = detailProductIDs(oldDetails)
		// Reversa del efecto actual
		if err := reverseDetails(stockRepo, header.Type, oldDetails, domain.ErrStockConflict); err != nil {
			return err
		}
		for _, d := range oldDetails {
			if err := movRepo.DeleteDetail(d.ID); err != nil {
				return err
			}
		}
		// Reaplicación del nuevo set
		newDetails := make([]*entity.MovementDetail, 0, len(input.Lines))
		for _, l := range input.Lines {
			d := &entity.MovementDetail{
				MovementID: movementID,
				ProductID:  l.ProductID,
				Quantity:   l.Quantity,
				UnitCost:   l.UnitCost,
				NewPrice:   l.NewPrice,
			}
			if err := movRepo.CreateDetail(d); err != nil {
				return err
			}
			if err := uc.applyLine(stockRepo, productRepo, input.Type, l); err != nil {
				return err
			}
			newDetails = append(newDetails, d)
		}
		header.Type = input.Type
		header.Concept = concept
		header.Reason = input.Reason
		header.TotalCost = kardex.TotalCost(newDetails)
		return movRepo.UpdateHeader(header)
	})
	if err != nil {
		return err
	}
	uc.invalidateCosts(ctx, append(oldProductIDs, lineProductIDs(input.Lines)...))
	return nil
}

// DeleteMovement revierte el efecto de todas las líneas y elimina cabecera y
// líneas de forma permanente. Si la reversa dejaría stock negativo (movimientos
// posteriores ya consumieron esas unidades) falla con ErrStockConflict y la
// cabecera queda intacta.
func (uc *LedgerUseCase) DeleteMovement(ctx context.Context, movementID string) error {
	var reversedIDs []string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		header, err := movRepo.GetHeader(movementID)
		if err != nil {
			return err
		}
		if header == nil {
			return domain.ErrNotFound
		}
		details, err := movRepo.ListDetailsByHeader(movementID)
		if err != nil {
			return err
		}
		reversedIDs = detailProductIDs(details)
		if err := reverseDetails(stockRepo, header.Type, details, domain.ErrStockConflict); err != nil {
			return err
		}
		return movRepo.DeleteHeader(movementID)
	})
	if err != nil {
		return err
	}
	uc.invalidateCosts(ctx, reversedIDs)
	return nil
}

// DeleteMovementDetail elimina una sola línea, revierte únicamente su efecto y
// recalcula el costo total de la cabecera. Misma guarda de stock negativo.
func (uc *LedgerUseCase) DeleteMovementDetail(ctx context.Context, detailID string) error {
	var reversedID string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		detail, err := movRepo.GetDetail(detailID)
		if err != nil {
			return err
		}
		if detail == nil {
			return domain.ErrNotFound
		}
		reversedID = detail.ProductID
		header, err := movRepo.GetHeader(detail.MovementID)
		if err != nil {
			return err
		}
		if header == nil {
			return domain.ErrNotFound
		}
		if err := reverseDetails(stockRepo, header.Type, []*entity.MovementDetail{detail}, domain.ErrStockConflict); err != nil {
			return err
		}
		if err := movRepo.DeleteDetail(detailID); err != nil {
			return err
		}
		remaining, err := movRepo.ListDetailsByHeader(header.ID)
		if err != nil {
			return err
		}
		header.TotalCost = kardex.TotalCost(remaining)
		return movRepo.UpdateHeader(header)
	})
	if err != nil {
		return err
	}
	uc.invalidateCosts(ctx, []string{reversedID})
	return nil
}

// GetMovement devuelve cabecera y líneas de un movimiento.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, movementID string) (*entity.MovementHeader, []*entity.MovementDetail, error) {
	header, err := uc.movRepo.GetHeader(movementID)
	if err != nil {
		return nil, nil, err
	}
	if header == nil {
		return nil, nil, domain.ErrNotFound
	}
	details, err := uc.movRepo.ListDetailsByHeader(movementID)
	if err != nil {
		return nil, nil, err
	}
	return header, details, nil
}

// ListMovements lista cabeceras en un rango de fechas con paginación.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.MovementHeader, error) {
	return uc.movRepo.ListHeaders(from, to, limit, offset)
}

// Kardex devuelve el historial de un producto (línea + cabecera) por fecha descendente.
func (uc *LedgerUseCase) Kardex(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]repository.KardexEntry, error) {
	return uc.movRepo.ListKardexByProduct(productID, from, to, limit, offset)
}

// invalidateCosts invalida el caché de último costo de los productos tocados.
// Toda escritura del ledger pasa por aquí, incluidas reversas: un costo en
// caché nunca debe sobrevivir al movimiento que lo originó.
// Best effort: el caché es una optimización de lectura, no estado de verdad.
func (uc *LedgerUseCase) invalidateCosts(ctx context.Context, productIDs []string) {
	if uc.costCache == nil {
		return
	}
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		uc.costCache.Invalidate(ctx, id)
	}
}

func lineProductIDs(lines []MovementLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

func detailProductIDs(details []*entity.MovementDetail) []string {
	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ProductID)
	}
	return ids
}
