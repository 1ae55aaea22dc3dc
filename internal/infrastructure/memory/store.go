// Package memory implementa el almacén de movimientos, ítems y órdenes en memoria.
// Sirve al driver STORE_DRIVER=memory (demos) y a los tests de casos de uso y handlers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.OrderRepository    = (*OrderRepo)(nil)
	_ inventory.TxRunner            = (*Store)(nil)
)

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	seq       int64
	movements []*entity.Movement
	items     map[string]entity.Item
	orders    map[string]entity.Order
	writeErr  error
	now       func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:  make(map[string]entity.Item),
		orders: make(map[string]entity.Order),
		now:    time.Now,
	}
}

// PutItem registra o reemplaza un ítem del catálogo.
func (s *Store) PutItem(item entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.Status == "" {
		item.Status = entity.ItemStatusAvailable
		if item.OnHand.IsZero() {
			item.Status = entity.ItemStatusDepleted
		}
	}
	s.items[item.ID] = item
}

// PutOrder registra o reemplaza una orden con sus líneas.
func (s *Store) PutOrder(order entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]entity.OrderLine, len(order.Lines))
	for i, l := range order.Lines {
		l.OrderID = order.ID
		lines[i] = l
	}
	order.Lines = lines
	s.orders[order.ID] = order
}

// FailWrites hace que toda escritura de movimientos devuelva err (nil restablece).
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Count número total de movimientos registrados.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements)
}

// Movements repositorio de movimientos sobre este almacén.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Items repositorio de ítems sobre este almacén.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Orders repositorio de órdenes sobre este almacén.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Run ejecuta fn de forma exclusiva. Los repositorios que recibe fn anotan sus escrituras; si fn
// falla solo esas se deshacen, las hechas fuera de la transacción se conservan. Como en una
// secuencia de base de datos, los Seq consumidos no se reutilizan.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.ItemRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{movements: make(map[string]bool), items: make(map[string]entity.Item)}
	if err := fn(&MovementRepo{s: s, undo: log}, &ItemRepo{s: s, undo: log}); err != nil {
		s.mu.Lock()
		log.rollback(s)
		s.mu.Unlock()
		return err
	}
	return nil
}

// undoLog escrituras de una transacción: IDs de movimientos creados y el valor previo de cada ítem tocado.
type undoLog struct {
	movements map[string]bool
	items     map[string]entity.Item
}

func (u *undoLog) created(id string) { u.movements[id] = true }

func (u *undoLog) touched(prev entity.Item) {
	if _, ok := u.items[prev.ID]; !ok {
		u.items[prev.ID] = prev
	}
}

// rollback requiere s.mu tomado.
func (u *undoLog) rollback(s *Store) {
	if len(u.movements) > 0 {
		kept := s.movements[:0]
		for _, m := range s.movements {
			if !u.movements[m.ID] {
				kept = append(kept, m)
			}
		}
		for i := len(kept); i < len(s.movements); i++ {
			s.movements[i] = nil
		}
		s.movements = kept
	}
	for id, prev := range u.items {
		s.items[id] = prev
	}
}

// MovementRepo implementación en memoria de repository.MovementRepository.
type MovementRepo struct {
	s    *Store
	undo *undoLog
}

// List filtra por ítem, ubicación y tipo; ordena por fecha y orden de inserción.
func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var loc string
	if filter.LocationID != nil {
		loc = entity.NormalizeLocation(*filter.LocationID)
	}
	out := make([]*entity.Movement, 0)
	for _, m := range r.s.movements {
		if m.ItemID != filter.ItemID {
			continue
		}
		if filter.LocationID != nil && m.LocationID != loc {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt) != filter.Desc
		}
		return (a.Seq < b.Seq) != filter.Desc
	})
	return out, nil
}

// CreateBatch valida todos los movimientos y los anexa juntos; asigna ID, Seq y CreatedAt.
func (r *MovementRepo) CreateBatch(_ context.Context, movements []*entity.Movement) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.writeErr != nil {
		return nil, r.s.writeErr
	}
	for _, m := range movements {
		if !m.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	ids := make([]string, 0, len(movements))
	now := r.s.now()
	for _, m := range movements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		r.s.seq++
		m.Seq = r.s.seq
		m.LocationID = entity.NormalizeLocation(m.LocationID)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		c := *m
		r.s.movements = append(r.s.movements, &c)
		ids = append(ids, m.ID)
		if r.undo != nil {
			r.undo.created(m.ID)
		}
	}
	return ids, nil
}

// ListLinkedExits salidas cuyo SourceBatchRef apunta al lote.
func (r *MovementRepo) ListLinkedExits(_ context.Context, batchID string) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Movement, 0)
	for _, m := range r.s.movements {
		if m.Type == entity.MovementTypeExit && m.SourceBatchRef == batchID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, domain.NewNotFound(domain.KindBatch, id)
}

// ItemRepo implementación en memoria de repository.ItemRepository.
type ItemRepo struct {
	s    *Store
	undo *undoLog
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, domain.NewNotFound(domain.KindItem, id)
	}
	return &item, nil
}

// GetForUpdate en memoria equivale a GetByID; la exclusión la da Store.Run.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

// UpdateStock actualiza el contador en caché y el estado del ítem.
func (r *ItemRepo) UpdateStock(_ context.Context, id string, onHand decimal.Decimal, status string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return domain.NewNotFound(domain.KindItem, id)
	}
	if r.undo != nil {
		r.undo.touched(item)
	}
	item.OnHand = onHand
	item.Status = status
	item.UpdatedAt = updatedAt
	r.s.items[id] = item
	return nil
}

// OrderRepo implementación en memoria de repository.OrderRepository.
type OrderRepo struct {
	s *Store
}

// GetByID obtiene una orden con sus líneas.
func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NewNotFound(domain.KindOrder, id)
	}
	order.Lines = append([]entity.OrderLine(nil), order.Lines...)
	return &order, nil
}
