// Package redislock implementa el candado por ítem sobre Redis para despliegues con varias instancias.
package redislock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain"
)

const (
	lockKeyPrefix   = "lock:item:"
	defaultTTL      = 10 * time.Second
	defaultRetry    = 25 * time.Millisecond
	releaseDeadline = 2 * time.Second
)

var _ inventory.ItemLocker = (*Locker)(nil)

// releaseScript borra la clave solo si el token coincide (no libera un candado ajeno tras expirar).
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// refreshScript extiende el TTL solo mientras el token siga siendo el dueño.
var refreshScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

// Locker candado por ítem con SET NX PX y token aleatorio.
// Mientras el candado está tomado se renueva cada ttl/3, así que el TTL no limita la duración
// de la sección crítica: solo acota cuánto puede retenerlo una instancia caída.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// New construye el candado. ttl <= 0 usa 10s.
func New(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{client: client, ttl: ttl, retry: defaultRetry}
}

// Lock reintenta hasta obtener el candado o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, itemID string) (func(), error) {
	key := lockKeyPrefix + itemID
	token := uuid.New().String()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &domain.StoreError{Op: "redis lock", Err: err}
		}
		if ok {
			return l.hold(key, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("esperando candado de %s: %w", itemID, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

// hold renueva el TTL en segundo plano hasta que se llame a la función devuelta, que deja de
// renovar y libera. Llamarla más de una vez no tiene efecto.
func (l *Locker) hold(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(l.ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !l.refresh(key, token) {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(key, token)
		})
	}
}

// refresh devuelve false cuando el candado ya no es nuestro. Un error de red no corta la renovación;
// se reintenta en el siguiente tick.
func (l *Locker) refresh(key, token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
	defer cancel()
	n, err := refreshScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return true
	}
	return n == 1
}

// release usa su propio contexto: el del request puede haber terminado ya.
// Un error aquí solo retrasa la liberación hasta el TTL.
func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseDeadline)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
