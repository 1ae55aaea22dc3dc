package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `seq, id, item_id, location_id, type, quantity, unit, occurred_at,
	document_ref, responsible, note, source_batch_ref, created_at`

type movementRow struct {
	Seq            int64           `db:"seq"`
	ID             string          `db:"id"`
	ItemID         string          `db:"item_id"`
	LocationID     string          `db:"location_id"`
	Type           string          `db:"type"`
	Quantity       decimal.Decimal `db:"quantity"`
	Unit           string          `db:"unit"`
	OccurredAt     int64           `db:"occurred_at"`
	DocumentRef    string          `db:"document_ref"`
	Responsible    string          `db:"responsible"`
	Note           string          `db:"note"`
	SourceBatchRef sql.NullString  `db:"source_batch_ref"`
	CreatedAt      int64           `db:"created_at"`
}

func (r movementRow) toEntity() *entity.Movement {
	return &entity.Movement{
		ID:             r.ID,
		Seq:            r.Seq,
		ItemID:         r.ItemID,
		LocationID:     r.LocationID,
		Type:           r.Type,
		Quantity:       r.Quantity,
		Unit:           r.Unit,
		OccurredAt:     fromNanos(r.OccurredAt),
		DocumentRef:    r.DocumentRef,
		Responsible:    r.Responsible,
		Note:           r.Note,
		SourceBatchRef: r.SourceBatchRef.String,
		CreatedAt:      fromNanos(r.CreatedAt),
	}
}

// MovementRepo libro de movimientos sobre SQLite (usable con *sqlx.DB o *sqlx.Tx).
type MovementRepo struct {
	q   sqlx.ExtContext
	now func() time.Time
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q sqlx.ExtContext) *MovementRepo {
	return &MovementRepo{q: q, now: time.Now}
}

// CreateBatch inserta todos los movimientos o ninguno. Sobre *sqlx.DB abre su propia transacción;
// sobre *sqlx.Tx escribe en la transacción del llamador.
func (r *MovementRepo) CreateBatch(ctx context.Context, movements []*entity.Movement) ([]string, error) {
	if len(movements) == 0 {
		return []string{}, nil
	}
	for _, m := range movements {
		if !m.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	db, ok := r.q.(*sqlx.DB)
	if !ok {
		return r.insert(ctx, r.q, movements)
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create movements: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	ids, err := r.insert(ctx, tx, movements)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create movements: %w", err)
	}
	return ids, nil
}

func (r *MovementRepo) insert(ctx context.Context, q sqlx.ExtContext, movements []*entity.Movement) ([]string, error) {
	const query = `
		INSERT INTO stock_movements (id, item_id, location_id, type, quantity, unit, occurred_at,
			document_ref, responsible, note, source_batch_ref, created_at)
		VALUES (:id, :item_id, :location_id, :type, :quantity, :unit, :occurred_at,
			:document_ref, :responsible, :note, :source_batch_ref, :created_at)`
	now := r.now().UTC()
	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.LocationID = entity.NormalizeLocation(m.LocationID)
		row := movementRow{
			ID:             m.ID,
			ItemID:         m.ItemID,
			LocationID:     m.LocationID,
			Type:           m.Type,
			Quantity:       m.Quantity,
			Unit:           m.Unit,
			OccurredAt:     toNanos(m.OccurredAt),
			DocumentRef:    m.DocumentRef,
			Responsible:    m.Responsible,
			Note:           m.Note,
			SourceBatchRef: sql.NullString{String: m.SourceBatchRef, Valid: m.SourceBatchRef != ""},
			CreatedAt:      toNanos(now),
		}
		res, err := sqlx.NamedExecContext(ctx, q, query, row)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.NewNotFound(domain.KindItem, m.ItemID)
			}
			if isCheckViolation(err) {
				return nil, domain.ErrInvalidInput
			}
			return nil, fmt.Errorf("insert movement: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert movement seq: %w", err)
		}
		m.Seq = seq
		m.CreatedAt = now
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// List lista movimientos de un ítem ordenados por fecha y secuencia de inserción.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = ?`)
	args := []any{filter.ItemID}
	if filter.LocationID != nil {
		sb.WriteString(" AND location_id = ?")
		args = append(args, entity.NormalizeLocation(*filter.LocationID))
	}
	if filter.Type != "" {
		sb.WriteString(" AND type = ?")
		args = append(args, filter.Type)
	}
	if filter.Desc {
		sb.WriteString(" ORDER BY occurred_at DESC, seq DESC")
	} else {
		sb.WriteString(" ORDER BY occurred_at ASC, seq ASC")
	}
	return r.selectMovements(ctx, sb.String(), args...)
}

// ListLinkedExits salidas cuyo source_batch_ref apunta al lote.
func (r *MovementRepo) ListLinkedExits(ctx context.Context, batchID string) ([]*entity.Movement, error) {
	return r.selectMovements(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE source_batch_ref = ? AND type = 'EXIT' ORDER BY seq`, batchID)
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var row movementRow
	err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+movementColumns+` FROM stock_movements WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(domain.KindBatch, id)
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return row.toEntity(), nil
}

func (r *MovementRepo) selectMovements(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	var rows []movementRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	list := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}
