package inflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardExclusive(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "session-1")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "session-1")
	assert.True(t, errors.Is(err, ErrHeld))

	// other keys are independent
	releaseOther, err := g.Acquire(ctx, "session-2")
	require.NoError(t, err)
	releaseOther()

	release()
	release() // idempotent

	again, err := g.Acquire(ctx, "session-1")
	require.NoError(t, err)
	again()
}

func TestMemoryGuardLeaseExpires(t *testing.T) {
	g := NewMemoryGuard(20 * time.Millisecond)
	ctx := context.Background()

	stale, err := g.Acquire(ctx, "k")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	fresh, err := g.Acquire(ctx, "k")
	require.NoError(t, err)

	// releasing the expired lease must not free the new holder's lease
	stale()
	_, err = g.Acquire(ctx, "k")
	assert.True(t, errors.Is(err, ErrHeld))

	fresh()
}

func TestMemoryGuardStaleReleaseRacingReacquire(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	for round := 0; round < 200; round++ {
		stale, err := g.Acquire(ctx, "k")
		require.NoError(t, err)
		staleToken, found := g.cache.Get("k")
		require.True(t, found)
		// Let the stale lease lapse while its holder is releasing it.
		g.cache.Set("k", staleToken, 50*time.Microsecond)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			stale()
		}()

		var fresh func()
		for fresh == nil {
			fresh, _ = g.Acquire(ctx, "k")
		}
		wg.Wait()

		current, found := g.cache.Get("k")
		require.True(t, found, "round %d: fresh lease was released by the stale holder", round)
		assert.NotEqual(t, staleToken, current)
		_, err = g.Acquire(ctx, "k")
		assert.True(t, errors.Is(err, ErrHeld))

		fresh()
	}
}

func TestMemoryGuardConcurrentAcquire(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		winners int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Acquire(ctx, "hot"); err == nil {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}

func TestMemoryGuardCanceledContext(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
