package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// AllocateUseCase asigna consumo contra los lotes más antiguos primero (FIFO) y emite salidas vinculadas.
//
// La lectura de lotes y la escritura de salidas no comparten una transacción del almacén;
// el ItemLocker es el único punto de serialización por ítem. Con NoopLocker dos asignaciones
// concurrentes del mismo ítem pueden leer la misma capacidad y sobreasignar un lote.
type AllocateUseCase struct {
	movRepo  repository.MovementRepository
	itemRepo repository.ItemRepository
	locker   ItemLocker
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewAllocateUseCase construye el caso de uso. locker y metrics nil usan las variantes Noop.
func NewAllocateUseCase(
	movRepo repository.MovementRepository,
	itemRepo repository.ItemRepository,
	locker ItemLocker,
	metrics Metrics,
	log *logger.Logger,
) *AllocateUseCase {
	if locker == nil {
		locker = NoopLocker{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AllocateUseCase{
		movRepo:  movRepo,
		itemRepo: itemRepo,
		locker:   locker,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// AllocationInput demanda de un ítem.
// PackagingFactor cero toma el factor de conversión del catálogo del ítem.
// LocationID vacío = pool general; las salidas se registran en el mismo pool de los lotes consumidos.
type AllocationInput struct {
	ItemID          string
	LocationID      string
	DemandBaseUnits decimal.Decimal
	PackagingFactor decimal.Decimal
	EventRef        string
	Actor           string
	OccurredAt      time.Time
}

// Allocate cubre toda la demanda con salidas sobre los lotes más antiguos o no escribe nada.
// Si los lotes no alcanzan devuelve *domain.InsufficientStockError con el faltante en unidades de empaque.
func (uc *AllocateUseCase) Allocate(ctx context.Context, in AllocationInput) ([]*entity.Movement, error) {
	if in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, domain.WrapStore("obtener ítem", err)
	}
	factor := in.PackagingFactor
	if factor.IsZero() {
		factor = item.PackagingFactor
	}
	demand, err := inventory.DemandUnits(in.DemandBaseUnits, factor)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.locker.Lock(ctx, in.ItemID)
	if err != nil {
		uc.metrics.ObserveAllocation(OutcomeError, decimal.Zero, decimal.Zero)
		return nil, err
	}
	defer unlock()

	pool := entity.NormalizeLocation(in.LocationID)
	states, err := uc.loadUntilCovered(ctx, in.ItemID, pool, demand)
	if err != nil {
		uc.metrics.ObserveAllocation(OutcomeError, decimal.Zero, decimal.Zero)
		return nil, err
	}

	plan, shortfall := inventory.PlanFIFO(states, demand)
	if shortfall.IsPositive() {
		uc.metrics.ObserveAllocation(OutcomeInsufficientStock, decimal.Zero, shortfall)
		uc.log.Warn().
			Str("item_id", in.ItemID).
			Str("location_id", pool).
			Str("demand_units", demand.String()).
			Str("shortfall", shortfall.String()).
			Msg("asignación FIFO sin stock suficiente")
		return nil, &domain.InsufficientStockError{ItemID: in.ItemID, Shortfall: shortfall}
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = uc.now()
	}
	exits := make([]*entity.Movement, 0, len(plan))
	for _, c := range plan {
		// la salida hereda la unidad del lote; lotes sin unidad usan la del ítem
		unit := c.Batch.Unit
		if unit == "" {
			unit = item.UnitMeasure
		}
		exits = append(exits, &entity.Movement{
			ItemID:         in.ItemID,
			LocationID:     pool,
			Type:           entity.MovementTypeExit,
			Quantity:       c.Quantity,
			Unit:           unit,
			OccurredAt:     occurredAt,
			DocumentRef:    in.EventRef,
			Responsible:    in.Actor,
			SourceBatchRef: c.Batch.ID,
		})
	}
	if _, err := uc.movRepo.CreateBatch(ctx, exits); err != nil {
		uc.metrics.ObserveAllocation(OutcomeError, decimal.Zero, decimal.Zero)
		return nil, domain.WrapStore("crear salidas", err)
	}

	uc.metrics.ObserveAllocation(OutcomeOK, demand, decimal.Zero)
	uc.log.Info().
		Str("item_id", in.ItemID).
		Str("location_id", pool).
		Str("event_ref", in.EventRef).
		Str("demand_units", demand.String()).
		Int("exits", len(exits)).
		Msg("asignación FIFO registrada")
	return exits, nil
}

// loadUntilCovered carga lotes en orden FIFO con su consumo, deteniéndose cuando la capacidad
// acumulada ya cubre la demanda para evitar consultas innecesarias al almacén.
func (uc *AllocateUseCase) loadUntilCovered(ctx context.Context, itemID, pool string, demand decimal.Decimal) ([]inventory.BatchState, error) {
	batches, err := listBatches(ctx, uc.movRepo, itemID, pool)
	if err != nil {
		return nil, err
	}
	states := make([]inventory.BatchState, 0, len(batches))
	for _, b := range batches {
		states = append(states, inventory.BatchState{Batch: b})
	}
	inventory.SortFIFO(states)

	covered := decimal.Zero
	for i := range states {
		if covered.GreaterThanOrEqual(demand) {
			return states[:i], nil
		}
		st, err := batchState(ctx, uc.movRepo, states[i].Batch)
		if err != nil {
			return nil, err
		}
		states[i] = st
		if rem := st.Remaining(); rem.IsPositive() {
			covered = covered.Add(rem)
		}
	}
	return states, nil
}

// AllocateMany procesa cada ítem por separado y en orden: cada uno se completa (o falla) antes del siguiente.
// Un fallo posterior no revierte las salidas ya persistidas de ítems anteriores; el resultado es por ítem.
func (uc *AllocateUseCase) AllocateMany(ctx context.Context, inputs []AllocationInput) []dto.AllocationResult {
	results := make([]dto.AllocationResult, 0, len(inputs))
	for _, in := range inputs {
		exits, err := uc.Allocate(ctx, in)
		results = append(results, allocationResult(in.ItemID, exits, err))
	}
	return results
}

func allocationResult(itemID string, exits []*entity.Movement, err error) dto.AllocationResult {
	if err == nil {
		return dto.AllocationResult{
			ItemID:       itemID,
			Status:       dto.AllocationStatusAllocated,
			ExitsCreated: ToMovementResponses(exits),
		}
	}
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		shortfall := insufficient.Shortfall
		return dto.AllocationResult{
			ItemID:         itemID,
			Status:         dto.AllocationStatusInsufficientStock,
			ShortfallUnits: &shortfall,
			Error:          err.Error(),
		}
	}
	return dto.AllocationResult{ItemID: itemID, Status: dto.AllocationStatusFailed, Error: err.Error()}
}
