package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newStore crea un almacén con el ítem "X" (factor 100 unidades base por empaque).
func newStore(t *testing.T, onHand string) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.PutItem(entity.Item{
		ID: "X", Code: "X-01", Name: "Agar", UnitMeasure: "frasco",
		PackagingFactor: d("100"), OnHand: d(onHand),
	})
	return store
}

// addEntry registra un lote y devuelve el movimiento con su ID asignado.
func addEntry(t *testing.T, store *memory.Store, item, location, qty string, at time.Time) *entity.Movement {
	t.Helper()
	m := &entity.Movement{ItemID: item, LocationID: location, Type: entity.MovementTypeEntry, Quantity: d(qty), OccurredAt: at}
	_, err := store.Movements().CreateBatch(context.Background(), []*entity.Movement{m})
	require.NoError(t, err)
	return m
}

func addExit(t *testing.T, store *memory.Store, item, location, qty, batchID string, at time.Time) {
	t.Helper()
	m := &entity.Movement{ItemID: item, LocationID: location, Type: entity.MovementTypeExit, Quantity: d(qty), OccurredAt: at, SourceBatchRef: batchID}
	_, err := store.Movements().CreateBatch(context.Background(), []*entity.Movement{m})
	require.NoError(t, err)
}

// consumedOf suma las salidas vinculadas al lote.
func consumedOf(t *testing.T, store *memory.Store, batchID string) decimal.Decimal {
	t.Helper()
	exits, err := store.Movements().ListLinkedExits(context.Background(), batchID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, e := range exits {
		total = total.Add(e.Quantity)
	}
	return total
}

type observation struct {
	kind      string
	outcome   string
	units     decimal.Decimal
	shortfall decimal.Decimal
}

// recordingMetrics guarda las observaciones para verificarlas.
type recordingMetrics struct {
	mu   sync.Mutex
	seen []observation
}

func (m *recordingMetrics) ObserveAllocation(outcome string, units, shortfall decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, observation{kind: "allocation", outcome: outcome, units: units, shortfall: shortfall})
}

func (m *recordingMetrics) ObserveAdjustment(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, observation{kind: operation, outcome: outcome})
}

func (m *recordingMetrics) last() observation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[len(m.seen)-1]
}
