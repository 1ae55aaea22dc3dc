// Package lock provee el candado por ítem en proceso (un solo escritor por ítem por instancia).
package lock

import (
	"context"
	"sync"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
)

var _ inventory.ItemLocker = (*KeyedMutex)(nil)

// KeyedMutex serializa por clave usando un canal de capacidad 1 por ítem.
// Las entradas se liberan cuando ya nadie espera por la clave.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex construye el candado.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

// Lock espera el turno del ítem o hasta que ctx termine.
func (k *KeyedMutex) Lock(ctx context.Context, itemID string) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[itemID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[itemID] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(itemID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			k.release(itemID, s)
		})
	}, nil
}

func (k *KeyedMutex) release(itemID string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, itemID)
	}
}

// Len número de claves con candado tomado o en espera.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
