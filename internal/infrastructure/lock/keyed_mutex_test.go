package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/infrastructure/lock"
)

func TestKeyedMutex_ExclusionPorItem(t *testing.T) {
	k := lock.NewKeyedMutex()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(context.Background(), "item-1")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load(), "solo un escritor por ítem a la vez")
	assert.Equal(t, 0, k.Len(), "las claves se liberan al terminar")
}

func TestKeyedMutex_ItemsDistintosNoSeBloquean(t *testing.T) {
	k := lock.NewKeyedMutex()
	unlockA, err := k.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	unlockB, err := k.Lock(ctx, "B")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_RespetaCancelacion(t *testing.T) {
	k := lock.NewKeyedMutex()
	unlock, err := k.Lock(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "A")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotente
	assert.Equal(t, 0, k.Len())
}
