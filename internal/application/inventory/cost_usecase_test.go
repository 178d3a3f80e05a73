package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// fakeCostCache doble en memoria del puerto CostCache.
type fakeCostCache struct {
	values map[string]decimal.Decimal
}

func newFakeCostCache() *fakeCostCache {
	return &fakeCostCache{values: make(map[string]decimal.Decimal)}
}

func (c *fakeCostCache) GetLastCost(_ context.Context, productID string) (decimal.Decimal, bool) {
	v, ok := c.values[productID]
	return v, ok
}

func (c *fakeCostCache) SetLastCost(_ context.Context, productID string, cost decimal.Decimal) {
	c.values[productID] = cost
}

func (c *fakeCostCache) Invalidate(_ context.Context, productID string) {
	delete(c.values, productID)
}

// TestLastCost_FallbackACatalogo sin historial de movimientos, el último costo
// es el costo de catálogo del producto.
func TestLastCost_FallbackACatalogo(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "COSTQ-1", 0, 7.25)

	costUC := inventory.NewCostUseCase(f.movRepo, f.productRepo, nil)
	cost, err := costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromFloat(7.25)))
}

// TestLastCost_SigueAlMovimientoMasReciente cada entrada nueva redefine el
// último costo; el costo de catálogo deja de usarse apenas hay historial.
func TestLastCost_SigueAlMovimientoMasReciente(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	p := f.seedProduct(t, "COSTQ-2", 0, 7.25)
	costUC := inventory.NewCostUseCase(f.movRepo, f.productRepo, nil)

	_, err := f.ledger.CreateMovement(ctx, inMovement(p.ID, 10, 12.50))
	require.NoError(t, err)
	cost, err := costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromFloat(12.50)))

	_, err = f.ledger.CreateMovement(ctx, inMovement(p.ID, 5, 11))
	require.NoError(t, err)
	cost, err = costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(11)),
		"la compra más reciente debe mandar sobre las anteriores")
}

// TestLastCost_ProductoInexistente consultar un producto que no existe es
// ErrNotFound.
func TestLastCost_ProductoInexistente(t *testing.T) {
	f := newLedgerFixture()
	costUC := inventory.NewCostUseCase(f.movRepo, f.productRepo, nil)

	_, err := costUC.LastCost(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestLastCost_CacheEInvalidacion la primera lectura llena el caché; registrar
// un movimiento sobre el producto lo invalida y la siguiente lectura ve el
// costo nuevo.
func TestLastCost_CacheEInvalidacion(t *testing.T) {
	store := newLedgerFixture()
	ctx := context.Background()
	cache := newFakeCostCache()
	p := store.seedProduct(t, "COSTQ-3", 0, 5)

	ledger := inventory.NewLedgerUseCase(
		store.txRunner, store.productRepo, store.movRepo, cache,
	)
	costUC := inventory.NewCostUseCase(store.movRepo, store.productRepo, cache)

	_, err := ledger.CreateMovement(ctx, inMovement(p.ID, 10, 12.50))
	require.NoError(t, err)

	cost, err := costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, cost.Equal(decimal.NewFromFloat(12.50)))
	_, cached := cache.GetLastCost(ctx, p.ID)
	assert.True(t, cached, "la lectura debe poblar el caché")

	_, err = ledger.CreateMovement(ctx, inMovement(p.ID, 5, 11))
	require.NoError(t, err)
	_, cached = cache.GetLastCost(ctx, p.ID)
	assert.False(t, cached, "un movimiento nuevo debe invalidar el caché")

	cost, err = costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(11)))
}

// TestLastCost_InvalidacionEnReversas eliminar un movimiento o una línea
// también invalida el caché: el costo cacheado de un movimiento borrado no
// debe sobrevivirlo.
func TestLastCost_InvalidacionEnReversas(t *testing.T) {
	store := newLedgerFixture()
	ctx := context.Background()
	cache := newFakeCostCache()
	p := store.seedProduct(t, "COSTQ-4", 0, 5)

	ledger := inventory.NewLedgerUseCase(
		store.txRunner, store.productRepo, store.movRepo, cache,
	)
	costUC := inventory.NewCostUseCase(store.movRepo, store.productRepo, cache)

	id, err := ledger.CreateMovement(ctx, inMovement(p.ID, 3, 9))
	require.NoError(t, err)
	cost, err := costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, cost.Equal(decimal.NewFromInt(9)))

	require.NoError(t, ledger.DeleteMovement(ctx, id))
	_, cached := cache.GetLastCost(ctx, p.ID)
	assert.False(t, cached, "borrar el movimiento debe invalidar el caché")
	cost, err = costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(5)),
		"sin historial el último costo vuelve al de catálogo")

	// Borrar una línea suelta invalida igual.
	id, err = ledger.CreateMovement(ctx, inMovement(p.ID, 2, 8))
	require.NoError(t, err)
	_, details, err := ledger.GetMovement(ctx, id)
	require.NoError(t, err)
	require.Len(t, details, 1)
	_, err = costUC.LastCost(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteMovementDetail(ctx, details[0].ID))
	_, cached = cache.GetLastCost(ctx, p.ID)
	assert.False(t, cached, "borrar la línea debe invalidar el caché")
}

// TestLastCost_InvalidacionEnActualizacion al corregir un movimiento se
// invalidan los productos del set viejo aunque el set nuevo no los incluya.
func TestLastCost_InvalidacionEnActualizacion(t *testing.T) {
	store := newLedgerFixture()
	ctx := context.Background()
	cache := newFakeCostCache()
	pa := store.seedProduct(t, "COSTQ-5A", 0, 4)
	pb := store.seedProduct(t, "COSTQ-5B", 0, 6)

	ledger := inventory.NewLedgerUseCase(
		store.txRunner, store.productRepo, store.movRepo, cache,
	)
	costUC := inventory.NewCostUseCase(store.movRepo, store.productRepo, cache)

	id, err := ledger.CreateMovement(ctx, inMovement(pa.ID, 5, 10))
	require.NoError(t, err)
	cost, err := costUC.LastCost(ctx, pa.ID)
	require.NoError(t, err)
	require.True(t, cost.Equal(decimal.NewFromInt(10)))

	// La corrección mueve la compra al producto B; A queda sin historial.
	err = ledger.UpdateMovement(ctx, id, inventory.UpdateMovementInput{
		Type:    entity.MovementTypeIN,
		Concept: entity.ConceptCompra,
		Lines: []inventory.MovementLine{
			{ProductID: pb.ID, Quantity: 5, UnitCost: decimal.NewFromInt(12)},
		},
	})
	require.NoError(t, err)

	_, cached := cache.GetLastCost(ctx, pa.ID)
	assert.False(t, cached, "el producto del set viejo debe invalidarse")
	cost, err = costUC.LastCost(ctx, pa.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(4)))
	cost, err = costUC.LastCost(ctx, pb.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(12)))
}
