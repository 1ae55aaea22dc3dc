package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/labstock-api/pkg/config"
)

// testPool conecta a TEST_DATABASE_URL; sin ella los tests de integración se omiten.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 4})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func seedItem(t *testing.T, pool *pgxpool.Pool, onHand int64) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO items (id, code, name, unit_measure, packaging_factor, on_hand, status) VALUES ($1, $2, $3, 'bolsa', 100, $4, 'AVAILABLE')`,
		id, "SKU-"+id[:8], "Sustrato", decimal.NewFromInt(onHand))
	require.NoError(t, err)
	return id
}

func TestMovementRepo_CreateListAndLinkedExits(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	itemID := seedItem(t, pool, 0)
	repo := postgres.NewMovementRepository(pool)

	t0 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	ids, err := repo.CreateBatch(ctx, []*entity.Movement{
		{ItemID: itemID, Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(3), OccurredAt: t0},
		{ItemID: itemID, Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(10), OccurredAt: t0.Add(time.Hour)},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	_, err = repo.CreateBatch(ctx, []*entity.Movement{
		{ItemID: itemID, Type: entity.MovementTypeExit, Quantity: decimal.RequireFromString("2.5"), OccurredAt: t0.Add(2 * time.Hour), SourceBatchRef: ids[0]},
	})
	require.NoError(t, err)

	general := ""
	entries, err := repo.List(ctx, repository.MovementFilter{ItemID: itemID, LocationID: &general, Type: entity.MovementTypeEntry})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[0], entries[0].ID, "orden ascendente por fecha")
	assert.Equal(t, entity.GeneralPool, entries[0].LocationID)

	desc, err := repo.List(ctx, repository.MovementFilter{ItemID: itemID, Desc: true})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, entity.MovementTypeExit, desc[0].Type)

	linked, err := repo.ListLinkedExits(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.True(t, linked[0].Quantity.Equal(decimal.RequireFromString("2.5")))

	_, err = repo.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementRepo_CreateBatchRechazaInvalidos(t *testing.T) {
	pool := testPool(t)
	itemID := seedItem(t, pool, 0)
	repo := postgres.NewMovementRepository(pool)

	_, err := repo.CreateBatch(context.Background(), []*entity.Movement{
		{ItemID: itemID, Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(1), OccurredAt: time.Now()},
		{ItemID: itemID, Type: entity.MovementTypeExit, Quantity: decimal.Zero, OccurredAt: time.Now()},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := repo.List(context.Background(), repository.MovementFilter{ItemID: itemID})
	require.NoError(t, err)
	assert.Empty(t, all, "no se escribe nada del lote rechazado")
}

func TestTxRunner_RollbackEnError(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	itemID := seedItem(t, pool, 5)
	runner := postgres.NewTxRunner(pool)

	err := runner.Run(ctx, func(movRepo repository.MovementRepository, itemRepo repository.ItemRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, itemID)
		require.NoError(t, err)
		require.NoError(t, itemRepo.UpdateStock(ctx, item.ID, decimal.Zero, entity.ItemStatusDepleted, time.Now()))
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	item, err := postgres.NewItemRepository(pool).GetByID(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, item.OnHand.Equal(decimal.NewFromInt(5)), "el rollback conserva el contador")
}

func TestOrderRepo_NoEncontrada(t *testing.T) {
	pool := testPool(t)
	_, err := postgres.NewOrderRepository(pool).GetByID(context.Background(), uuid.New().String())
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.KindOrder, nf.Kind)
}
