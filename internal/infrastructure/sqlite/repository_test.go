package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/labstock-api/pkg/config"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "labstock.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))

	items := sqlite.NewItemRepository(db)
	require.NoError(t, items.Save(ctx, &entity.Item{
		ID: "reagent-1", Code: "R-1", Name: "Etanol", UnitMeasure: "L",
		PackagingFactor: decimal.NewFromInt(1000), OnHand: decimal.NewFromInt(10),
		Status: entity.ItemStatusAvailable, UpdatedAt: time.Now(),
	}))
	return db
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMovementRepo_CreateListAndLinkedExits(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := sqlite.NewMovementRepository(db)
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	entry := &entity.Movement{ItemID: "reagent-1", Type: entity.MovementTypeEntry, Quantity: d("7.5"), OccurredAt: t0}
	ids, err := repo.CreateBatch(ctx, []*entity.Movement{entry})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, entity.GeneralPool, entry.LocationID)
	assert.NotZero(t, entry.Seq)

	exit := &entity.Movement{
		ItemID: "reagent-1", Type: entity.MovementTypeExit, Quantity: d("2.25"),
		OccurredAt: t0.Add(time.Hour), SourceBatchRef: entry.ID,
	}
	_, err = repo.CreateBatch(ctx, []*entity.Movement{exit})
	require.NoError(t, err)

	general := entity.GeneralPool
	all, err := repo.List(ctx, repository.MovementFilter{ItemID: "reagent-1", LocationID: &general})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entry.ID, all[0].ID)
	assert.True(t, all[0].Quantity.Equal(d("7.5")))
	assert.True(t, all[0].OccurredAt.Equal(t0))

	desc, err := repo.List(ctx, repository.MovementFilter{ItemID: "reagent-1", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, exit.ID, desc[0].ID)

	linked, err := repo.ListLinkedExits(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, entry.ID, linked[0].SourceBatchRef)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeEntry, got.Type)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMovementRepo_TieBreakBySeq(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := sqlite.NewMovementRepository(db)
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	a := &entity.Movement{ItemID: "reagent-1", Type: entity.MovementTypeEntry, Quantity: d("1"), OccurredAt: at}
	b := &entity.Movement{ItemID: "reagent-1", Type: entity.MovementTypeEntry, Quantity: d("2"), OccurredAt: at}
	_, err := repo.CreateBatch(ctx, []*entity.Movement{a, b})
	require.NoError(t, err)

	list, err := repo.List(ctx, repository.MovementFilter{ItemID: "reagent-1", Type: entity.MovementTypeEntry})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Less(t, list[0].Seq, list[1].Seq)
}

func TestMovementRepo_CreateBatchAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := sqlite.NewMovementRepository(db)

	ok := &entity.Movement{ItemID: "reagent-1", Type: entity.MovementTypeEntry, Quantity: d("1"), OccurredAt: time.Now()}
	unknown := &entity.Movement{ItemID: "no-such-item", Type: entity.MovementTypeEntry, Quantity: d("1"), OccurredAt: time.Now()}
	_, err := repo.CreateBatch(ctx, []*entity.Movement{ok, unknown})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, err := repo.List(ctx, repository.MovementFilter{ItemID: "reagent-1"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.CreateBatch(ctx, []*entity.Movement{{ItemID: "reagent-1", Type: entity.MovementTypeEntry, Quantity: d("0")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTxRunner_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	runner := sqlite.NewTxRunner(db)
	boom := errors.New("boom")

	err := runner.Run(ctx, func(movRepo repository.MovementRepository, itemRepo repository.ItemRepository) error {
		if err := itemRepo.UpdateStock(ctx, "reagent-1", d("3"), entity.ItemStatusAvailable, time.Now()); err != nil {
			return err
		}
		if _, err := movRepo.CreateBatch(ctx, []*entity.Movement{{
			ItemID: "reagent-1", Type: entity.MovementTypeExit, Quantity: d("7"), OccurredAt: time.Now(),
		}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	item, err := sqlite.NewItemRepository(db).GetByID(ctx, "reagent-1")
	require.NoError(t, err)
	assert.True(t, item.OnHand.Equal(d("10")))

	list, err := sqlite.NewMovementRepository(db).List(ctx, repository.MovementFilter{ItemID: "reagent-1"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestItemRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	items := sqlite.NewItemRepository(db)

	_, err := items.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = items.UpdateStock(ctx, "missing", d("1"), entity.ItemStatusAvailable, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepo_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	orders := sqlite.NewOrderRepository(db)

	require.NoError(t, orders.Save(ctx, &entity.Order{ID: "OP-1", Code: "OP-2024-001", Lines: []entity.OrderLine{
		{ItemID: "reagent-1", QuantityOrdered: d("10")},
		{ItemID: "reagent-1", QuantityOrdered: d("2.5")},
	}}))

	o, err := orders.GetByID(ctx, "OP-1")
	require.NoError(t, err)
	assert.Equal(t, "OP-2024-001", o.Code)
	require.Len(t, o.Lines, 2)
	assert.True(t, o.Lines[1].QuantityOrdered.Equal(d("2.5")))

	_, err = orders.GetByID(ctx, "OP-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
