package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
)

// TestGenerateLowStockList productos bajo punto de reorden salen en la lista
// con cantidad sugerida hasta 2x el mínimo, valorados al último costo y
// ordenados por mayor déficit.
func TestGenerateLowStockList(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	costUC := inventory.NewCostUseCase(f.movRepo, f.productRepo, nil)
	lowStockUC := inventory.NewLowStockUseCase(f.productRepo, costUC)

	// A: stock 2, mínimo 10 (déficit 8). B: stock 4, mínimo 6 (déficit 2).
	// C: sobre el mínimo, no debe aparecer.
	pa := f.seedProduct(t, "LOW-A", 0, 5)
	pa.MinStock = 10
	require.NoError(t, f.productRepo.Update(pa))
	require.NoError(t, f.stockRepo.ApplyDelta(pa.ID, 2))

	pb := f.seedProduct(t, "LOW-B", 0, 3)
	pb.MinStock = 6
	require.NoError(t, f.productRepo.Update(pb))
	require.NoError(t, f.stockRepo.ApplyDelta(pb.ID, 4))

	pc := f.seedProduct(t, "LOW-C", 20, 1)
	pc.MinStock = 5
	require.NoError(t, f.productRepo.Update(pc))

	items, err := lowStockUC.GenerateLowStockList(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "LOW-A", items[0].SKU, "el mayor déficit va primero")
	assert.Equal(t, int64(18), items[0].SuggestedOrderQty, "sugerido = 2×10 − 2")
	assert.True(t, items[0].EstimatedOrderCost.Equal(decimal.NewFromInt(90)))

	assert.Equal(t, "LOW-B", items[1].SKU)
	assert.Equal(t, int64(8), items[1].SuggestedOrderQty)
}

// TestGenerateLowStockList_Vacia sin productos bajo mínimo la lista es vacía,
// no nil.
func TestGenerateLowStockList_Vacia(t *testing.T) {
	f := newLedgerFixture()
	costUC := inventory.NewCostUseCase(f.movRepo, f.productRepo, nil)
	lowStockUC := inventory.NewLowStockUseCase(f.productRepo, costUC)

	items, err := lowStockUC.GenerateLowStockList(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
