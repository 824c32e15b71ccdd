package lock

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

func TestLocalLocker_ExcludesSecondHolder(t *testing.T) {
	locker := NewLocalLocker(Options{TTL: time.Second, Wait: 0, RetryDelay: 10 * time.Millisecond})
	ctx := context.Background()

	held, err := locker.Acquire(ctx, "order:lock:A")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "order:lock:A")
	assert.True(t, errors.Is(err, ErrNotAcquired))

	other, err := locker.Acquire(ctx, "order:lock:B")
	require.NoError(t, err, "different keys do not contend")
	require.NoError(t, other.Release(ctx))

	require.NoError(t, held.Release(ctx))

	again, err := locker.Acquire(ctx, "order:lock:A")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocalLocker_WaitsForRelease(t *testing.T) {
	locker := NewLocalLocker(Options{TTL: time.Second, Wait: time.Second, RetryDelay: 5 * time.Millisecond})
	ctx := context.Background()

	held, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = held.Release(ctx)
	}()

	next, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, next.Release(ctx))
}

func TestLocalLocker_StaleReleaseKeepsNewOwner(t *testing.T) {
	locker := NewLocalLocker(Options{TTL: 20 * time.Millisecond, Wait: 0, RetryDelay: 5 * time.Millisecond})
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	second, err := locker.Acquire(ctx, "k")
	require.NoError(t, err, "expired lock can be taken over")

	require.NoError(t, first.Release(ctx))

	_, err = locker.Acquire(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotAcquired), "stale release must not free the new owner's lock")

	require.NoError(t, second.Release(ctx))
}

func TestLocalLocker_StaleReleaseRacingTakeover(t *testing.T) {
	const ttl = 10 * time.Millisecond
	locker := NewLocalLocker(Options{TTL: ttl, Wait: 0, RetryDelay: time.Millisecond})
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		stale, err := locker.Acquire(ctx, "k")
		require.NoError(t, err)
		time.Sleep(ttl)

		var (
			wg      sync.WaitGroup
			fresh   Lock
			takenAt time.Time
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = stale.Release(ctx)
		}()
		go func() {
			defer wg.Done()
			fresh, _ = locker.Acquire(ctx, "k")
			takenAt = time.Now()
		}()
		wg.Wait()

		if fresh == nil {
			continue
		}
		current, found := locker.store.Get("k")
		// the new entry may legitimately expire on a slow run
		if time.Since(takenAt) < ttl/2 && assert.True(t, found, "round %d: new owner's entry was deleted", i) {
			assert.Equal(t, fresh.(*localLock).token, current)
		}
		require.NoError(t, fresh.Release(ctx))
	}
}

func TestLocalLocker_ContextCancel(t *testing.T) {
	locker := NewLocalLocker(Options{TTL: time.Second, Wait: time.Second, RetryDelay: 5 * time.Millisecond})

	held, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer held.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotAcquired))
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalLocker(Options{TTL: time.Second, Wait: 2 * time.Second, RetryDelay: time.Millisecond})
	ctx := context.Background()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := locker.Acquire(ctx, "k")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = l.Release(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestOptions_Tries(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{name: "no wait", opts: Options{Wait: 0, RetryDelay: 100 * time.Millisecond}, want: 1},
		{name: "five seconds at 100ms", opts: Options{Wait: 5 * time.Second, RetryDelay: 100 * time.Millisecond}, want: 51},
		{name: "defaults", opts: Options{}.withDefaults(), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.tries())
		})
	}
}
