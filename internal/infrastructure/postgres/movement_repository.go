package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, seq, item_id, location_id, type, quantity, unit, occurred_at,
	document_ref, responsible, note, source_batch_ref, created_at`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// CreateBatch inserta todos los movimientos con un pgx.Batch dentro de una transacción
// (o savepoint si q ya es una tx). Asigna ID, y lee Seq y CreatedAt generados por la BD.
func (r *MovementRepo) CreateBatch(ctx context.Context, movements []*entity.Movement) ([]string, error) {
	if len(movements) == 0 {
		return []string{}, nil
	}
	for _, m := range movements {
		if !m.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create movements: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO stock_movements (id, item_id, location_id, type, quantity, unit, occurred_at,
			document_ref, responsible, note, source_batch_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq, created_at`
	batch := &pgx.Batch{}
	for _, m := range movements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.LocationID = entity.NormalizeLocation(m.LocationID)
		batch.Queue(query,
			m.ID, m.ItemID, m.LocationID, m.Type, m.Quantity, m.Unit, m.OccurredAt,
			m.DocumentRef, m.Responsible, m.Note, nullable(m.SourceBatchRef),
		)
	}
	br := tx.SendBatch(ctx, batch)
	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		if err := br.QueryRow().Scan(&m.Seq, &m.CreatedAt); err != nil {
			_ = br.Close()
			if isForeignKeyViolation(err) {
				return nil, domain.NewNotFound(domain.KindItem, m.ItemID)
			}
			if isCheckViolation(err) {
				return nil, domain.ErrInvalidInput
			}
			return nil, fmt.Errorf("insert movement: %w", err)
		}
		ids = append(ids, m.ID)
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create movements: %w", err)
	}
	return ids, nil
}

// List lista movimientos de un ítem ordenados por fecha y secuencia de inserción.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = $1`)
	args := []any{filter.ItemID}
	pos := 2
	if filter.LocationID != nil {
		sb.WriteString(fmt.Sprintf(" AND location_id = $%d", pos))
		args = append(args, entity.NormalizeLocation(*filter.LocationID))
		pos++
	}
	if filter.Type != "" {
		sb.WriteString(fmt.Sprintf(" AND type = $%d", pos))
		args = append(args, filter.Type)
	}
	if filter.Desc {
		sb.WriteString(" ORDER BY occurred_at DESC, seq DESC")
	} else {
		sb.WriteString(" ORDER BY occurred_at ASC, seq ASC")
	}
	return r.query(ctx, sb.String(), args...)
}

// ListLinkedExits salidas cuyo source_batch_ref apunta al lote.
func (r *MovementRepo) ListLinkedExits(ctx context.Context, batchID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE source_batch_ref = $1 AND type = 'EXIT' ORDER BY seq`
	return r.query(ctx, query, batchID)
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.KindBatch, id)
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (r *MovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var sourceBatch *string
	if err := row.Scan(&m.ID, &m.Seq, &m.ItemID, &m.LocationID, &m.Type, &m.Quantity, &m.Unit, &m.OccurredAt,
		&m.DocumentRef, &m.Responsible, &m.Note, &sourceBatch, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.SourceBatchRef = deref(sourceBatch)
	return &m, nil
}
