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

// AdjustUseCase recibe y descuenta existencias manualmente. Cada ajuste actualiza el contador en caché
// del ítem y anexa el movimiento equivalente en el pool general dentro de la misma transacción,
// de modo que caché y libro siempre sean reconciliables.
//
// Un descuento consume lotes del pool general en orden FIFO, igual que una asignación: cada salida
// queda vinculada a su lote y comparte el ItemLocker con AllocateUseCase.
type AdjustUseCase struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	balances *BalanceUseCase
	locker   ItemLocker
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	balances *BalanceUseCase,
	locker ItemLocker,
	metrics Metrics,
	log *logger.Logger,
) *AdjustUseCase {
	if locker == nil {
		locker = NoopLocker{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustUseCase{
		txRunner: txRunner,
		itemRepo: itemRepo,
		balances: balances,
		locker:   locker,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Adjust despacha según in.Operation (receive | discount).
func (uc *AdjustUseCase) Adjust(ctx context.Context, in dto.AdjustmentRequest) (*dto.AdjustmentResponse, error) {
	switch in.Operation {
	case dto.AdjustmentReceive:
		return uc.Receive(ctx, in)
	case dto.AdjustmentDiscount:
		return uc.Discount(ctx, in)
	}
	return nil, domain.ErrInvalidInput
}

// Receive incrementa el contador; si estaba en cero el ítem pasa a AVAILABLE. Anexa una entrada.
func (uc *AdjustUseCase) Receive(ctx context.Context, in dto.AdjustmentRequest) (*dto.AdjustmentResponse, error) {
	return uc.apply(ctx, dto.AdjustmentReceive, in, inventory.ApplyReceive, receiveMovements)
}

// Discount decrementa el contador; falla con stock insuficiente si qty supera lo disponible en caché
// o lo que queda en los lotes del pool general. Al llegar exactamente a cero el ítem pasa a DEPLETED.
// Anexa una salida por lote consumido, vinculada con SourceBatchRef.
func (uc *AdjustUseCase) Discount(ctx context.Context, in dto.AdjustmentRequest) (*dto.AdjustmentResponse, error) {
	return uc.apply(ctx, dto.AdjustmentDiscount, in, inventory.ApplyDiscount, discountMovements)
}

// movementBuilder arma los movimientos del ajuste con el repositorio atado a la transacción.
type movementBuilder func(ctx context.Context, movRepo repository.MovementRepository, item *entity.Item, base entity.Movement) ([]*entity.Movement, error)

func receiveMovements(_ context.Context, _ repository.MovementRepository, _ *entity.Item, base entity.Movement) ([]*entity.Movement, error) {
	base.Type = entity.MovementTypeEntry
	return []*entity.Movement{&base}, nil
}

// discountMovements reparte el descuento sobre los lotes del pool general, del más antiguo al más nuevo.
func discountMovements(ctx context.Context, movRepo repository.MovementRepository, item *entity.Item, base entity.Movement) ([]*entity.Movement, error) {
	batches, err := listBatches(ctx, movRepo, item.ID, entity.GeneralPool)
	if err != nil {
		return nil, err
	}
	states := make([]inventory.BatchState, 0, len(batches))
	for _, b := range batches {
		st, err := batchState(ctx, movRepo, b)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	inventory.SortFIFO(states)

	plan, shortfall := inventory.PlanFIFO(states, base.Quantity)
	if shortfall.IsPositive() {
		return nil, &domain.InsufficientStockError{ItemID: item.ID, Shortfall: shortfall}
	}
	exits := make([]*entity.Movement, 0, len(plan))
	for _, c := range plan {
		exit := base
		exit.Type = entity.MovementTypeExit
		exit.Quantity = c.Quantity
		if c.Batch.Unit != "" {
			exit.Unit = c.Batch.Unit
		}
		exit.SourceBatchRef = c.Batch.ID
		exits = append(exits, &exit)
	}
	return exits, nil
}

func (uc *AdjustUseCase) apply(
	ctx context.Context,
	operation string,
	in dto.AdjustmentRequest,
	transition func(*entity.Item, decimal.Decimal) (inventory.StockTransition, error),
	build movementBuilder,
) (*dto.AdjustmentResponse, error) {
	if in.ItemID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := uc.locker.Lock(ctx, in.ItemID)
	if err != nil {
		uc.metrics.ObserveAdjustment(operation, OutcomeError)
		return nil, err
	}
	defer unlock()

	now := uc.now()
	occurredAt := now
	if in.Metadata.OccurredAt != nil {
		occurredAt = *in.Metadata.OccurredAt
	}

	var out *dto.AdjustmentResponse
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, itemRepo repository.ItemRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return domain.WrapStore("obtener ítem", err)
		}
		tr, err := transition(item, in.Quantity)
		if err != nil {
			return err
		}
		if err := itemRepo.UpdateStock(ctx, item.ID, tr.NewOnHand, tr.StatusAfter, now); err != nil {
			return domain.WrapStore("actualizar existencias", err)
		}
		movements, err := build(ctx, movRepo, item, entity.Movement{
			ItemID:      item.ID,
			LocationID:  entity.GeneralPool,
			Quantity:    in.Quantity,
			Unit:        item.UnitMeasure,
			OccurredAt:  occurredAt,
			DocumentRef: in.Metadata.DocumentRef,
			Responsible: in.Actor,
			Note:        in.Metadata.Note,
		})
		if err != nil {
			return err
		}
		ids, err := movRepo.CreateBatch(ctx, movements)
		if err != nil {
			return domain.WrapStore("crear movimiento de ajuste", err)
		}
		out = &dto.AdjustmentResponse{
			ItemID:         item.ID,
			PreviousOnHand: tr.PreviousOnHand,
			NewOnHand:      tr.NewOnHand,
			StatusAfter:    tr.StatusAfter,
		}
		if len(ids) > 0 {
			out.MovementID = ids[0]
			out.MovementIDs = ids
		}
		return nil
	})
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, domain.ErrInsufficientStock) {
			outcome = OutcomeInsufficientStock
		}
		uc.metrics.ObserveAdjustment(operation, outcome)
		return nil, err
	}

	uc.metrics.ObserveAdjustment(operation, OutcomeOK)
	uc.log.Info().
		Str("item_id", out.ItemID).
		Str("operation", operation).
		Str("previous_on_hand", out.PreviousOnHand.String()).
		Str("new_on_hand", out.NewOnHand.String()).
		Str("status", out.StatusAfter).
		Msg("ajuste directo aplicado")
	return out, nil
}

// VerifyOnHand compara el contador en caché con el saldo del libro en el pool general.
// El libro es la fuente de verdad; Drift = caché − libro.
func (uc *AdjustUseCase) VerifyOnHand(ctx context.Context, itemID string) (*dto.OnHandCheckResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, domain.WrapStore("obtener ítem", err)
	}
	ledger, err := uc.balances.Balance(ctx, itemID, entity.GeneralPool)
	if err != nil {
		return nil, err
	}
	drift := item.OnHand.Sub(ledger)
	if !drift.IsZero() {
		uc.log.Warn().
			Str("item_id", itemID).
			Str("cached_on_hand", item.OnHand.String()).
			Str("ledger_on_hand", ledger.String()).
			Msg("contador en caché difiere del libro")
	}
	return &dto.OnHandCheckResponse{
		ItemID:       itemID,
		CachedOnHand: item.OnHand,
		LedgerOnHand: ledger,
		Drift:        drift,
		InSync:       drift.IsZero(),
	}, nil
}
