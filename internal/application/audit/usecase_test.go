package audit_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/kardex-core/internal/application/audit"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: sesiones de auditoría sobre el ledger en memoria. Toda varianza se
// cierra emitiendo movimientos reales a través del ledger, así que los tests
// verifican ambos lados: el estado de la sesión y el historial resultante.
// ──────────────────────────────────────────────────────────────────────────────

type auditFixture struct {
	store       *memory.Store
	productRepo *memory.ProductRepo
	movRepo     *memory.MovementRepo
	stockRepo   *memory.StockRepo
	sessionRepo *memory.AuditSessionRepo
	ledger      *inventory.LedgerUseCase
	uc          *audit.SessionUseCase
}

func newAuditFixture() *auditFixture {
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	movRepo := memory.NewMovementRepository(store)
	sessionRepo := memory.NewAuditSessionRepository(store)
	ledger := inventory.NewLedgerUseCase(memory.NewTxRunner(store), productRepo, movRepo, nil)
	costUC := inventory.NewCostUseCase(movRepo, productRepo, nil)
	return &auditFixture{
		store:       store,
		productRepo: productRepo,
		movRepo:     movRepo,
		stockRepo:   memory.NewStockRepository(store),
		sessionRepo: sessionRepo,
		ledger:      ledger,
		uc:          audit.NewSessionUseCase(sessionRepo, productRepo, ledger, costUC),
	}
}

func (f *auditFixture) seedProduct(t *testing.T, sku string, stock int64, cost float64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		SKU:  sku,
		Name: "Producto " + sku,
		Cost: decimal.NewFromFloat(cost),
	}
	require.NoError(t, f.productRepo.Create(p))
	if stock > 0 {
		require.NoError(t, f.stockRepo.ApplyDelta(p.ID, stock))
	}
	return p
}

func (f *auditFixture) stockOf(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.productRepo.GetByID(productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *auditFixture) openSession(t *testing.T) *entity.AuditSession {
	t.Helper()
	session, err := f.uc.StartSession(context.Background(), "auditor-1", entity.AuditTypeFull)
	require.NoError(t, err)
	return session
}

// movementsOfSession lista las cabeceras emitidas por una sesión.
func (f *auditFixture) movementsOfSession(t *testing.T, sessionID string) []*entity.MovementHeader {
	t.Helper()
	headers, err := f.movRepo.ListHeaders(nil, nil, 0, 0)
	require.NoError(t, err)
	var out []*entity.MovementHeader
	for _, h := range headers {
		if h.AuditSessionID != nil && *h.AuditSessionID == sessionID {
			out = append(out, h)
		}
	}
	return out
}

// TestStartSession_SoloUnaAbierta abrir una sesión con otra OPEN en curso falla
// con ErrSessionConflict.
func TestStartSession_SoloUnaAbierta(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()

	first, err := f.uc.StartSession(ctx, "auditor-1", entity.AuditTypeFull)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusOpen, first.Status)

	_, err = f.uc.StartSession(ctx, "auditor-2", entity.AuditTypePartial)
	assert.ErrorIs(t, err, domain.ErrSessionConflict)

	// Cancelada la primera, una nueva apertura vuelve a ser válida.
	_, err = f.uc.CancelSession(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.uc.StartSession(ctx, "auditor-2", entity.AuditTypePartial)
	assert.NoError(t, err)
}

// TestStartSession_TipoInvalido tipos fuera de FULL/PARTIAL se rechazan.
func TestStartSession_TipoInvalido(t *testing.T) {
	f := newAuditFixture()
	_, err := f.uc.StartSession(context.Background(), "auditor-1", "SPOT")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestAdjustSingle_EmiteMovimientoCompensatorio un conteo físico menor al
// sistema emite de inmediato una salida AUDITORIA_RAPIDA por la diferencia,
// referenciando la sesión, y el stock queda en el valor contado.
func TestAdjustSingle_EmiteMovimientoCompensatorio(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "AUD-1", 12, 4)
	session := f.openSession(t)

	require.NoError(t, f.uc.AdjustSingle(ctx, session.ID, "auditor-1", p.ID, 7))

	assert.Equal(t, int64(7), f.stockOf(t, p.ID))
	moves := f.movementsOfSession(t, session.ID)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MovementTypeOUT, moves[0].Type)
	assert.Equal(t, entity.ConceptAuditoriaRapida, moves[0].Concept)

	// La sesión sigue OPEN: el ajuste rápido no la cierra.
	current, err := f.uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, current.IsOpen())
}

// TestAdjustSingle_DiferenciaCeroEsNoOp contar exactamente el stock del sistema
// no emite movimiento alguno.
func TestAdjustSingle_DiferenciaCeroEsNoOp(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "AUD-2", 9, 4)
	session := f.openSession(t)

	require.NoError(t, f.uc.AdjustSingle(ctx, session.ID, "auditor-1", p.ID, 9))

	assert.Equal(t, int64(9), f.stockOf(t, p.ID))
	assert.Empty(t, f.movementsOfSession(t, session.ID))
}

// TestFinalizeSession_FaltanteCierraConVarianzaNegativa sistema 12, físico 7:
// el cierre emite una salida de 5 unidades al último costo y la sesión queda
// CLOSED con varianza neta −5×costo.
func TestFinalizeSession_FaltanteCierraConVarianzaNegativa(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "AUD-3", 0, 4)
	_, err := f.ledger.CreateMovement(ctx, inventory.CreateMovementInput{
		UserID:  "user-1",
		Type:    entity.MovementTypeIN,
		Concept: entity.ConceptCompra,
		Lines: []inventory.MovementLine{
			{ProductID: p.ID, Quantity: 12, UnitCost: decimal.NewFromFloat(4.50)},
		},
	})
	require.NoError(t, err)
	session := f.openSession(t)

	closed, err := f.uc.FinalizeSession(ctx, session.ID, "auditor-1", map[string]int64{p.ID: 7})
	require.NoError(t, err)

	assert.Equal(t, entity.AuditStatusClosed, closed.Status)
	require.NotNil(t, closed.EndDate)
	assert.True(t, closed.NetVariance.Equal(decimal.NewFromFloat(-22.50)),
		"varianza esperada −5×4.50, obtuvo %s", closed.NetVariance)
	assert.Equal(t, int64(7), f.stockOf(t, p.ID))

	moves := f.movementsOfSession(t, session.ID)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MovementTypeOUT, moves[0].Type)
	assert.Equal(t, entity.ConceptAuditoria, moves[0].Concept)
}

// TestFinalizeSession_ParticionaSobrantesYFaltantes sobrantes y faltantes se
// agregan en a lo más un IN y un OUT, y la varianza neta suma ambos signos.
func TestFinalizeSession_ParticionaSobrantesYFaltantes(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	pa := f.seedProduct(t, "AUD-4A", 10, 2) // físico 13: sobrante +3
	pb := f.seedProduct(t, "AUD-4B", 8, 5)  // físico 6: faltante −2
	pc := f.seedProduct(t, "AUD-4C", 4, 9)  // físico 4: sin varianza
	session := f.openSession(t)

	closed, err := f.uc.FinalizeSession(ctx, session.ID, "auditor-1", map[string]int64{
		pa.ID: 13,
		pb.ID: 6,
		pc.ID: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(13), f.stockOf(t, pa.ID))
	assert.Equal(t, int64(6), f.stockOf(t, pb.ID))
	assert.Equal(t, int64(4), f.stockOf(t, pc.ID))

	// +3×2 − 2×5 = −4
	assert.True(t, closed.NetVariance.Equal(decimal.NewFromInt(-4)))

	moves := f.movementsOfSession(t, session.ID)
	require.Len(t, moves, 2, "a lo más un IN y un OUT agregados")
	types := map[string]int{}
	for _, m := range moves {
		types[m.Type]++
	}
	assert.Equal(t, 1, types[entity.MovementTypeIN])
	assert.Equal(t, 1, types[entity.MovementTypeOUT])
}

// TestFinalizeSession_ReintentoIdempotente un producto ya compensado con ajuste
// rápido arroja diferencia cero en el cierre: no se vuelve a ajustar.
func TestFinalizeSession_ReintentoIdempotente(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	pa := f.seedProduct(t, "AUD-5A", 12, 4)
	pb := f.seedProduct(t, "AUD-5B", 10, 3)
	session := f.openSession(t)

	// El ajuste rápido ya dejó AUD-5A en 7.
	require.NoError(t, f.uc.AdjustSingle(ctx, session.ID, "auditor-1", pa.ID, 7))

	closed, err := f.uc.FinalizeSession(ctx, session.ID, "auditor-1", map[string]int64{
		pa.ID: 7,
		pb.ID: 9,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), f.stockOf(t, pa.ID), "el producto ya ajustado no debe ajustarse dos veces")
	assert.Equal(t, int64(9), f.stockOf(t, pb.ID))

	// Solo la varianza de AUD-5B (−1×3) cuenta en el cierre; el ajuste rápido
	// se liquidó en su propio movimiento.
	assert.True(t, closed.NetVariance.Equal(decimal.NewFromInt(-3)))

	moves := f.movementsOfSession(t, session.ID)
	require.Len(t, moves, 2) // el ajuste rápido + el OUT agregado del cierre
}

// TestFinalizeSession_ConteoNegativoInvalido conteos físicos negativos se
// rechazan sin cerrar la sesión.
func TestFinalizeSession_ConteoNegativoInvalido(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "AUD-6", 5, 2)
	session := f.openSession(t)

	_, err := f.uc.FinalizeSession(ctx, session.ID, "auditor-1", map[string]int64{p.ID: -1})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	current, err := f.uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, current.IsOpen())
}

// TestSesionCerradaEsInmutable sobre una sesión CLOSED no se puede ajustar,
// cerrar de nuevo ni cancelar.
func TestSesionCerradaEsInmutable(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "AUD-7", 5, 2)
	session := f.openSession(t)

	_, err := f.uc.FinalizeSession(ctx, session.ID, "auditor-1", map[string]int64{p.ID: 5})
	require.NoError(t, err)

	err = f.uc.AdjustSingle(ctx, session.ID, "auditor-1", p.ID, 3)
	assert.ErrorIs(t, err, domain.ErrSessionConflict)

	_, err = f.uc.FinalizeSession(ctx, session.ID, "auditor-1", map[string]int64{p.ID: 3})
	assert.ErrorIs(t, err, domain.ErrSessionConflict)

	_, err = f.uc.CancelSession(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionConflict)
}

// TestCancelSession_SinEfectoEnLedger cancelar descarta la sesión sin tocar
// stock ni historial; los ajustes rápidos ya emitidos permanecen.
func TestCancelSession_SinEfectoEnLedger(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "AUD-8", 12, 4)
	session := f.openSession(t)

	require.NoError(t, f.uc.AdjustSingle(ctx, session.ID, "auditor-1", p.ID, 10))
	require.Equal(t, int64(10), f.stockOf(t, p.ID))

	cancelled, err := f.uc.CancelSession(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.AuditStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.EndDate)
	assert.Equal(t, int64(10), f.stockOf(t, p.ID), "el ajuste rápido ya emitido no se revierte")
	require.Len(t, f.movementsOfSession(t, session.ID), 1)
}

// TestGetSession_NoExiste consultar una sesión inexistente es ErrNotFound.
func TestGetSession_NoExiste(t *testing.T) {
	f := newAuditFixture()
	_, err := f.uc.GetSession(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
