package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// SessionUseCase orquesta el ciclo de una sesión de conteo físico:
// NONE → OPEN → CLOSED. Las varianzas se cierran emitiendo movimientos
// compensatorios a través del ledger; la sesión nunca toca el stock directo.
//
// Finalize siempre calcula la diferencia contra el stock vivo (ya ajustado),
// de modo que un reintento tras un fallo parcial es idempotente: los productos
// ya compensados arrojan diferencia cero y no se vuelven a ajustar.
type SessionUseCase struct {
	sessionRepo repository.AuditSessionRepository
	productRepo repository.ProductRepository
	ledger      *inventory.LedgerUseCase
	costUC      *inventory.CostUseCase
}

// NewSessionUseCase construye el caso de uso de auditoría.
func NewSessionUseCase(
	sessionRepo repository.AuditSessionRepository,
	productRepo repository.ProductRepository,
	ledger *inventory.LedgerUseCase,
	costUC *inventory.CostUseCase,
) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo: sessionRepo,
		productRepo: productRepo,
		ledger:      ledger,
		costUC:      costUC,
	}
}

// StartSession abre una nueva sesión de conteo. Solo puede haber una OPEN a la
// vez; una segunda apertura falla con ErrSessionConflict. El índice único
// parcial en BD respalda esta guarda ante concurrencia.
func (uc *SessionUseCase) StartSession(ctx context.Context, userID, sessionType string) (*entity.AuditSession, error) {
	if sessionType != entity.AuditTypeFull && sessionType != entity.AuditTypePartial {
		return nil, domain.ErrInvalidInput
	}
	open, err := uc.sessionRepo.GetOpen()
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domain.ErrSessionConflict
	}
	session := &entity.AuditSession{
		ID:          uuid.New().String(),
		Type:        sessionType,
		Status:      entity.AuditStatusOpen,
		StartDate:   time.Now(),
		NetVariance: decimal.Zero,
		CreatedBy:   userID,
	}
	if err := uc.sessionRepo.Create(session); err != nil {
		if err == domain.ErrDuplicate {
			return nil, domain.ErrSessionConflict
		}
		return nil, err
	}
	return session, nil
}

// openSession carga la sesión y verifica que siga OPEN.
func (uc *SessionUseCase) openSession(sessionID string) (*entity.AuditSession, error) {
	session, err := uc.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if !session.IsOpen() {
		return nil, domain.ErrSessionConflict
	}
	return session, nil
}

// AdjustSingle cierra de inmediato la varianza de un solo producto: emite un
// movimiento compensatorio por |físico - sistema| al último costo conocido,
// independiente del finalize. Diferencia cero es un no-op.
func (uc *SessionUseCase) AdjustSingle(ctx context.Context, sessionID, userID, productID string, physicalQty int64) error {
	if physicalQty < 0 {
		return domain.ErrInvalidInput
	}
	session, err := uc.openSession(sessionID)
	if err != nil {
		return err
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	diff := kardex.Variance(physicalQty, product.Stock)
	if diff == 0 {
		return nil
	}
	unitCost, err := uc.costUC.LastCost(ctx, productID)
	if err != nil {
		return err
	}
	movType := entity.MovementTypeIN
	qty := diff
	if diff < 0 {
		movType = entity.MovementTypeOUT
		qty = -diff
	}
	_, err = uc.ledger.CreateMovement(ctx, inventory.CreateMovementInput{
		UserID:  userID,
		Type:    movType,
		Concept: entity.ConceptAuditoriaRapida,
		Reason:  fmt.Sprintf("Ajuste rápido de conteo físico (%s)", product.SKU),
		Lines: []inventory.MovementLine{
			{ProductID: productID, Quantity: qty, UnitCost: unitCost},
		},
		AuditSessionID: &session.ID,
	})
	return err
}

// adjustment una varianza valorada, lista para agregarse a un movimiento.
type adjustment struct {
	productID string
	diff      int64
	unitCost  decimal.Decimal
}

// FinalizeSession reconcilia el conteo físico completo contra el stock vivo.
// Particiona las varianzas en sobrantes y faltantes y emite a lo más un
// movimiento IN agregado y un OUT agregado, ambos referenciando la sesión y
// con cada línea valorada al último costo. La varianza neta monetaria es
// Σ(diff * costo); un faltante aporta negativo. Solo si ambos movimientos
// quedan aplicados la sesión pasa a CLOSED con EndDate y NetVariance.
//
// Los dos movimientos agregados son operaciones de ledger separadas: si la
// segunda falla, la sesión queda OPEN y el reintento vuelve a calcular las
// diferencias contra el stock ya ajustado.
func (uc *SessionUseCase) FinalizeSession(ctx context.Context, sessionID, userID string, counts map[string]int64) (*entity.AuditSession, error) {
	session, err := uc.openSession(sessionID)
	if err != nil {
		return nil, err
	}

	// Orden determinista para recorrer el conteo
	productIDs := make([]string, 0, len(counts))
	for id := range counts {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	netVariance := decimal.Zero
	var surpluses, deficits []adjustment
	for _, productID := range productIDs {
		physical := counts[productID]
		if physical < 0 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		diff := kardex.Variance(physical, product.Stock)
		if diff == 0 {
			continue
		}
		unitCost, err := uc.costUC.LastCost(ctx, productID)
		if err != nil {
			return nil, err
		}
		adj := adjustment{productID: productID, diff: diff, unitCost: unitCost}
		if diff > 0 {
			surpluses = append(surpluses, adj)
		} else {
			deficits = append(deficits, adj)
		}
		netVariance = netVariance.Add(decimal.NewFromInt(diff).Mul(unitCost))
	}

	if err := uc.issueAggregate(ctx, session, userID, entity.MovementTypeIN, surpluses); err != nil {
		return nil, err
	}
	if err := uc.issueAggregate(ctx, session, userID, entity.MovementTypeOUT, deficits); err != nil {
		return nil, err
	}

	now := time.Now()
	session.Status = entity.AuditStatusClosed
	session.EndDate = &now
	session.NetVariance = netVariance
	if err := uc.sessionRepo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

// issueAggregate emite un único movimiento con todas las líneas de una
// partición (sobrantes o faltantes). Vacío = no-op.
func (uc *SessionUseCase) issueAggregate(ctx context.Context, session *entity.AuditSession, userID, movType string, adjs []adjustment) error {
	if len(adjs) == 0 {
		return nil
	}
	lines := make([]inventory.MovementLine, 0, len(adjs))
	for _, a := range adjs {
		qty := a.diff
		if qty < 0 {
			qty = -qty
		}
		lines = append(lines, inventory.MovementLine{
			ProductID: a.productID,
			Quantity:  qty,
			UnitCost:  a.unitCost,
		})
	}
	_, err := uc.ledger.CreateMovement(ctx, inventory.CreateMovementInput{
		UserID:         userID,
		Type:           movType,
		Concept:        entity.ConceptAuditoria,
		Reason:         "Ajuste por conteo físico de auditoría",
		Lines:          lines,
		AuditSessionID: &session.ID,
	})
	return err
}

// CancelSession descarta una sesión OPEN sin efecto en el ledger. Los conteos
// nunca se persistieron, así que no hay nada que revertir. Una sesión cerrada
// o ya cancelada no puede cancelarse.
func (uc *SessionUseCase) CancelSession(ctx context.Context, sessionID string) (*entity.AuditSession, error) {
	session, err := uc.openSession(sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session.Status = entity.AuditStatusCancelled
	session.EndDate = &now
	if err := uc.sessionRepo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession devuelve una sesión por ID.
func (uc *SessionUseCase) GetSession(ctx context.Context, sessionID string) (*entity.AuditSession, error) {
	session, err := uc.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}
