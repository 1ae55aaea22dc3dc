package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
)

func bal(entries, exits int64) inventory.Balance {
	return inventory.Balance{Entries: decimal.NewFromInt(entries), Exits: decimal.NewFromInt(exits)}
}

func TestProjectLine_CompletaPeroSinDespachar(t *testing.T) {
	line := entity.OrderLine{OrderID: "O1", ItemID: "X", QuantityOrdered: decimal.NewFromInt(100)}
	ls := inventory.ProjectLine(line, bal(80, 20), bal(50, 10))

	assert.True(t, ls.OrderPoolOnHand.Equal(decimal.NewFromInt(60)))
	assert.True(t, ls.GeneralPoolOnHand.Equal(decimal.NewFromInt(40)))
	assert.True(t, ls.TotalAvailable.Equal(decimal.NewFromInt(100)))
	assert.True(t, ls.LineComplete)
	assert.True(t, ls.Shortfall.IsZero())
	assert.True(t, ls.DispatchedFromOrderPool.Equal(decimal.NewFromInt(20)))
	assert.True(t, ls.PendingToDispatch.Equal(decimal.NewFromInt(80)))
	assert.False(t, ls.LineDispatched)
}

func TestProjectLine_FaltanteYPoolGeneralNegativo(t *testing.T) {
	line := entity.OrderLine{OrderID: "O1", ItemID: "X", QuantityOrdered: decimal.NewFromInt(30)}
	ls := inventory.ProjectLine(line, bal(10, 15), bal(5, 9))

	assert.True(t, ls.OrderPoolOnHand.IsZero(), "el pool de la orden no puede ser negativo")
	assert.True(t, ls.GeneralPoolOnHand.IsZero())
	assert.False(t, ls.LineComplete)
	assert.True(t, ls.Shortfall.Equal(decimal.NewFromInt(30)))
	assert.True(t, ls.PendingToDispatch.Equal(decimal.NewFromInt(15)))
}

func TestProjectLine_Despachada(t *testing.T) {
	line := entity.OrderLine{OrderID: "O1", ItemID: "X", QuantityOrdered: decimal.NewFromInt(10)}
	ls := inventory.ProjectLine(line, bal(12, 12), bal(0, 0))
	assert.True(t, ls.LineDispatched)
	assert.True(t, ls.PendingToDispatch.IsZero())
	assert.False(t, ls.LineComplete, "todo lo producido ya salió del pool")
}

func TestSummarize(t *testing.T) {
	a := inventory.ProjectLine(entity.OrderLine{ItemID: "A", QuantityOrdered: decimal.NewFromInt(100)}, bal(80, 20), bal(50, 10))
	b := inventory.ProjectLine(entity.OrderLine{ItemID: "B", QuantityOrdered: decimal.NewFromInt(10)}, bal(4, 0), bal(1, 0))

	out := inventory.Summarize("O1", []inventory.LineStock{a, b})
	assert.False(t, out.OrderComplete)
	assert.False(t, out.OrderDispatched)
	assert.True(t, out.TotalOrdered.Equal(decimal.NewFromInt(110)))
	assert.True(t, out.TotalAvailable.Equal(decimal.NewFromInt(105)))
	assert.True(t, out.TotalShortfall.Equal(decimal.NewFromInt(5)))
	assert.True(t, out.TotalDispatched.Equal(decimal.NewFromInt(20)))
	assert.True(t, out.TotalPending.Equal(decimal.NewFromInt(90)))
	assert.True(t, out.TotalGeneralPoolAvailable.Equal(decimal.NewFromInt(41)))

	empty := inventory.Summarize("O2", nil)
	assert.True(t, empty.OrderComplete)
	assert.True(t, empty.OrderDispatched)
}
