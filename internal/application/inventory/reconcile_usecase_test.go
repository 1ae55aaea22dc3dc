package inventory_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
)

type fakeRenderer struct {
	got *dto.OrderStockReport
}

func (f *fakeRenderer) RenderOrderStock(_ context.Context, r *dto.OrderStockReport) ([]byte, error) {
	f.got = r
	return []byte("%PDF-fake"), nil
}

// seedOrder arma la orden OP-1 con una línea de 100 del ítem X:
// pool de la orden 80 entradas / 20 salidas, pool general 50 entradas / 10 salidas.
func seedOrder(t *testing.T) *memory.Store {
	t.Helper()
	store := newStore(t, "0")
	store.PutOrder(entity.Order{ID: "OP-1", Code: "OP-2024-001", Lines: []entity.OrderLine{
		{ItemID: "X", QuantityOrdered: d("100")},
	}})
	ob := addEntry(t, store, "X", "OP-1", "80", t0)
	addExit(t, store, "X", "OP-1", "20", ob.ID, t0.Add(time.Hour))
	gb := addEntry(t, store, "X", "", "50", t0)
	addExit(t, store, "X", "", "10", gb.ID, t0.Add(time.Hour))
	return store
}

func TestReconcile_CombinaPoolDeOrdenYGeneral(t *testing.T) {
	store := seedOrder(t)
	uc := inventory.NewReconcileUseCase(store.Orders(), inventory.NewBalanceUseCase(store.Movements()), nil)

	report, err := uc.Reconcile(context.Background(), "OP-1")
	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	line := report.Lines[0]

	assert.True(t, line.ProducedInOrderPool.Equal(d("80")))
	assert.True(t, line.DispatchedFromOrderPool.Equal(d("20")))
	assert.True(t, line.OrderPoolOnHand.Equal(d("60")))
	assert.True(t, line.GeneralPoolOnHand.Equal(d("40")))
	assert.True(t, line.TotalAvailable.Equal(d("100")))
	assert.True(t, line.LineComplete)
	assert.True(t, line.Shortfall.IsZero())
	assert.True(t, line.PendingToDispatch.Equal(d("80")))
	assert.False(t, line.LineDispatched)

	assert.Equal(t, "OP-2024-001", report.OrderCode)
	assert.True(t, report.OrderComplete)
	assert.False(t, report.OrderDispatched)
	assert.True(t, report.TotalGeneralPoolAvailable.Equal(d("40")))
}

func TestReconcile_EsIdempotente(t *testing.T) {
	store := seedOrder(t)
	store.PutItem(entity.Item{ID: "Y", Code: "Y-01", Name: "Peptona", PackagingFactor: d("1")})
	store.PutOrder(entity.Order{ID: "OP-1", Lines: []entity.OrderLine{
		{ItemID: "X", QuantityOrdered: d("100")},
		{ItemID: "Y", QuantityOrdered: d("7")},
		{ItemID: "X", QuantityOrdered: d("30")},
	}})
	uc := inventory.NewReconcileUseCase(store.Orders(), inventory.NewBalanceUseCase(store.Movements()), nil)
	before := store.Count()

	first, err := uc.Reconcile(context.Background(), "OP-1")
	require.NoError(t, err)
	second, err := uc.Reconcile(context.Background(), "OP-1")
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, before, store.Count(), "la conciliación no escribe movimientos")
	require.Len(t, first.Lines, 3)
	assert.Equal(t, "Y", first.Lines[1].ItemID, "se conserva el orden de las líneas")
	assert.True(t, first.Lines[1].Shortfall.Equal(d("7")))
	assert.False(t, first.OrderComplete)
}

func TestReconcile_OrdenSinLineasCompleta(t *testing.T) {
	store := newStore(t, "0")
	store.PutOrder(entity.Order{ID: "OP-EMPTY"})
	uc := inventory.NewReconcileUseCase(store.Orders(), inventory.NewBalanceUseCase(store.Movements()), nil)

	report, err := uc.Reconcile(context.Background(), "OP-EMPTY")
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	assert.True(t, report.OrderComplete)
	assert.True(t, report.OrderDispatched)
}

func TestReconcile_Errores(t *testing.T) {
	store := newStore(t, "0")
	uc := inventory.NewReconcileUseCase(store.Orders(), inventory.NewBalanceUseCase(store.Movements()), nil)
	ctx := context.Background()

	_, err := uc.Reconcile(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Reconcile(ctx, entity.GeneralPool)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Reconcile(ctx, "OP-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.KindOrder, nf.Kind)
}

func TestRenderPDF(t *testing.T) {
	store := seedOrder(t)
	renderer := &fakeRenderer{}
	uc := inventory.NewReconcileUseCase(store.Orders(), inventory.NewBalanceUseCase(store.Movements()), renderer)

	out, err := uc.RenderPDF(context.Background(), "OP-1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	require.NotNil(t, renderer.got)
	assert.Equal(t, "OP-1", renderer.got.OrderID)

	_, err = inventory.NewReconcileUseCase(store.Orders(), inventory.NewBalanceUseCase(store.Movements()), nil).
		RenderPDF(context.Background(), "OP-1")
	assert.Error(t, err)
}
