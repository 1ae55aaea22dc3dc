package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// BalanceUseCase calcula saldos plegando movimientos; nunca lee un total acumulado.
type BalanceUseCase struct {
	movRepo repository.MovementRepository
}

// NewBalanceUseCase construye el caso de uso.
func NewBalanceUseCase(movRepo repository.MovementRepository) *BalanceUseCase {
	return &BalanceUseCase{movRepo: movRepo}
}

// Fold pliega los movimientos de (ítem, ubicación). Ubicación vacía = pool general.
func (uc *BalanceUseCase) Fold(ctx context.Context, itemID, locationID string) (inventory.Balance, error) {
	loc := entity.NormalizeLocation(locationID)
	movs, err := uc.movRepo.List(ctx, repository.MovementFilter{ItemID: itemID, LocationID: &loc})
	if err != nil {
		return inventory.Balance{}, domain.WrapStore("listar movimientos", err)
	}
	return inventory.Fold(movs), nil
}

// Balance saldo con signo de (ítem, ubicación).
func (uc *BalanceUseCase) Balance(ctx context.Context, itemID, locationID string) (decimal.Decimal, error) {
	b, err := uc.Fold(ctx, itemID, locationID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Net(), nil
}

// AvailableAtLocation saldo recortado a cero para cálculos de disponibilidad.
func (uc *BalanceUseCase) AvailableAtLocation(ctx context.Context, itemID, locationID string) (decimal.Decimal, error) {
	b, err := uc.Fold(ctx, itemID, locationID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Available(), nil
}

// Breakdown devuelve entradas, salidas, saldo crudo y disponible.
func (uc *BalanceUseCase) Breakdown(ctx context.Context, itemID, locationID string) (*dto.BalanceResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	b, err := uc.Fold(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		ItemID:     itemID,
		LocationID: entity.NormalizeLocation(locationID),
		Entries:    b.Entries,
		Exits:      b.Exits,
		Balance:    b.Net(),
		Available:  b.Available(),
	}, nil
}

// ListBatches lista los lotes de (ítem, ubicación) en orden FIFO con su capacidad restante.
func (uc *BalanceUseCase) ListBatches(ctx context.Context, itemID, locationID string) ([]dto.BatchStatusResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	batches, err := listBatches(ctx, uc.movRepo, itemID, entity.NormalizeLocation(locationID))
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchStatusResponse, 0, len(batches))
	for _, b := range batches {
		state, err := batchState(ctx, uc.movRepo, b)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.BatchStatusResponse{
			Batch:     toMovementResponse(b),
			Consumed:  state.Consumed,
			Remaining: state.Remaining(),
			Exhausted: state.Exhausted(),
		})
	}
	return out, nil
}

// ListMovements historial de movimientos para trazabilidad.
func (uc *BalanceUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]dto.MovementResponse, error) {
	if filter.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if filter.Type != "" && filter.Type != entity.MovementTypeEntry && filter.Type != entity.MovementTypeExit {
		return nil, domain.ErrInvalidInput
	}
	movs, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.WrapStore("listar movimientos", err)
	}
	return ToMovementResponses(movs), nil
}

// listBatches entradas de (ítem, pool) del más antiguo al más nuevo.
func listBatches(ctx context.Context, movRepo repository.MovementRepository, itemID, pool string) ([]*entity.Movement, error) {
	movs, err := movRepo.List(ctx, repository.MovementFilter{
		ItemID:     itemID,
		LocationID: &pool,
		Type:       entity.MovementTypeEntry,
	})
	if err != nil {
		return nil, domain.WrapStore("listar lotes", err)
	}
	return movs, nil
}

// batchState suma las salidas vinculadas a un lote.
func batchState(ctx context.Context, movRepo repository.MovementRepository, batch *entity.Movement) (inventory.BatchState, error) {
	exits, err := movRepo.ListLinkedExits(ctx, batch.ID)
	if err != nil {
		return inventory.BatchState{}, domain.WrapStore("listar salidas del lote", err)
	}
	return inventory.BatchState{Batch: batch, Consumed: inventory.Fold(exits).Exits}, nil
}
