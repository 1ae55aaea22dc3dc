package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

func entry(qty int64) *entity.Movement {
	return &entity.Movement{ItemID: "X", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(qty), OccurredAt: t0}
}

func newStore() *memory.Store {
	store := memory.NewStore()
	store.PutItem(entity.Item{ID: "X", Code: "X-01", Name: "Agar", PackagingFactor: decimal.NewFromInt(1), OnHand: decimal.NewFromInt(3)})
	return store
}

func TestRun_RollbackSoloDeshaceLasEscriturasDeLaTransaccion(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	outside := entry(2)
	inside := entry(5)

	err := store.Run(ctx, func(movRepo repository.MovementRepository, itemRepo repository.ItemRepository) error {
		if _, err := store.Movements().CreateBatch(ctx, []*entity.Movement{outside}); err != nil {
			return err
		}
		if _, err := movRepo.CreateBatch(ctx, []*entity.Movement{inside}); err != nil {
			return err
		}
		if err := itemRepo.UpdateStock(ctx, "X", decimal.NewFromInt(8), entity.ItemStatusAvailable, t0); err != nil {
			return err
		}
		return errors.New("falla después de escribir")
	})
	require.Error(t, err)

	assert.Equal(t, 1, store.Count())
	kept, err := store.Movements().GetByID(ctx, outside.ID)
	require.NoError(t, err)
	assert.True(t, kept.Quantity.Equal(decimal.NewFromInt(2)))
	_, err = store.Movements().GetByID(ctx, inside.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	item, err := store.Items().GetByID(ctx, "X")
	require.NoError(t, err)
	assert.True(t, item.OnHand.Equal(decimal.NewFromInt(3)), "el contador vuelve al valor previo")
}

func TestRun_ConfirmaSiNoHayError(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	err := store.Run(ctx, func(movRepo repository.MovementRepository, itemRepo repository.ItemRepository) error {
		if _, err := movRepo.CreateBatch(ctx, []*entity.Movement{entry(5)}); err != nil {
			return err
		}
		return itemRepo.UpdateStock(ctx, "X", decimal.NewFromInt(8), entity.ItemStatusAvailable, t0)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Count())
	item, err := store.Items().GetByID(ctx, "X")
	require.NoError(t, err)
	assert.True(t, item.OnHand.Equal(decimal.NewFromInt(8)))
}

func TestMovementRepo_CreateBatchEsTodoONada(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	invalid := &entity.Movement{ItemID: "X", Type: "TRANSFER", Quantity: decimal.NewFromInt(1), OccurredAt: t0}
	_, err := store.Movements().CreateBatch(ctx, []*entity.Movement{entry(1), invalid})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, store.Count())

	ids, err := store.Movements().CreateBatch(ctx, []*entity.Movement{entry(1), entry(2)})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	first, err := store.Movements().GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralPool, first.LocationID)
}
