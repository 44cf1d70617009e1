package arena

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolInvalidCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		_, err := NewPool(count)
		assert.ErrorIs(t, err, ErrInvalidConfig, "count=%d", count)
	}
}

func TestPoolAcquireRelease(t *testing.T) {
	p, err := NewPool(3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	require.NoError(t, p.Acquire(context.Background(), 0))
	// Other locks stay independent
	require.NoError(t, p.Acquire(context.Background(), 1))
	p.Release(0)
	p.Release(1)
}

func TestPoolMutualExclusion(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	const goroutines = 16
	const iterations = 200

	var inside atomic.Int32
	var violations atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				require.NoError(t, p.Acquire(context.Background(), 0))
				if inside.Add(1) != 1 {
					violations.Add(1)
				}
				inside.Add(-1)
				p.Release(0)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, violations.Load(), "more than one holder observed inside the critical section")
}

func TestPoolAcquireBlocksUntilRelease(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	require.NoError(t, p.Acquire(context.Background(), 0))

	got := make(chan error, 1)
	go func() {
		got <- p.Acquire(context.Background(), 0)
	}()

	select {
	case <-got:
		t.Fatal("acquire returned while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(0)
	require.NoError(t, <-got)
	p.Release(0)
}

func TestPoolAcquireContextCancel(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	require.NoError(t, p.Acquire(context.Background(), 0))
	defer p.Release(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = p.Acquire(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoolAcquireTimeout(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	require.NoError(t, p.Acquire(context.Background(), 0))
	defer p.Release(0)

	const timeout = 20 * time.Millisecond
	start := time.Now()
	err = p.AcquireTimeout(0, timeout)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, elapsed, timeout)
	// Bounded scheduling slack: never indefinite
	assert.Less(t, elapsed, timeout+time.Second)
}

func TestPoolAcquireTimeoutFreeLock(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	require.NoError(t, p.AcquireTimeout(0, time.Millisecond))
	p.Release(0)

	// Zero timeout still succeeds on a free lock
	require.NoError(t, p.AcquireTimeout(0, 0))
	p.Release(0)
}

func TestPoolAcquireTimeoutZeroOnHeldLock(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	require.NoError(t, p.Acquire(context.Background(), 0))
	defer p.Release(0)

	assert.ErrorIs(t, p.AcquireTimeout(0, 0), ErrTimeout)
}

func TestPoolTryAcquire(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	assert.True(t, p.TryAcquire(0))
	assert.False(t, p.TryAcquire(0))
	p.Release(0)
	assert.True(t, p.TryAcquire(0))
	p.Release(0)
}

func TestPoolReleaseFreePanics(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	assert.Panics(t, func() { p.Release(0) })
}

func TestPoolIndexOutOfRangePanics(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)

	assert.Panics(t, func() { p.TryAcquire(2) })
	assert.Panics(t, func() { p.TryAcquire(-1) })
}

func TestPoolAcquireNilContextPanics(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "arena: nil Context", func() {
		_ = p.Acquire(nil, 0) //nolint:staticcheck // exercising the nil ctx guard
	})
}
