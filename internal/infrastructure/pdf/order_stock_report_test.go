package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/dto"
)

func TestRenderOrderStock(t *testing.T) {
	r := NewOrderStockRenderer()
	report := &dto.OrderStockReport{
		OrderID:   "OP-1",
		OrderCode: "OP-2024-001",
		Lines: []dto.LineStockReport{{
			ItemID:            "reagent-1",
			QuantityOrdered:   decimal.NewFromInt(10),
			OrderPoolOnHand:   decimal.NewFromInt(4),
			GeneralPoolOnHand: decimal.NewFromInt(3),
			TotalAvailable:    decimal.NewFromInt(7),
			Shortfall:         decimal.NewFromInt(3),
		}},
		TotalOrdered:   decimal.NewFromInt(10),
		TotalAvailable: decimal.NewFromInt(7),
		TotalShortfall: decimal.NewFromInt(3),
	}

	out, err := r.RenderOrderStock(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderOrderStock_NilReport(t *testing.T) {
	_, err := NewOrderStockRenderer().RenderOrderStock(context.Background(), nil)
	assert.Error(t, err)
}

func TestQuantity_KeepsDecimals(t *testing.T) {
	r := NewOrderStockRenderer()
	assert.Equal(t, "0", r.quantity(decimal.Zero))
	assert.Equal(t, "2,5", r.quantity(decimal.RequireFromString("2.5")))
	assert.Equal(t, "-7,125", r.quantity(decimal.RequireFromString("-7.125")))
}
