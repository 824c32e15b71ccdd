package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedsyncLocker is the cross-process Locker backed by Redis.
type RedsyncLocker struct {
	rs   *redsync.Redsync
	opts Options
}

func NewRedsyncLocker(rdb *redis.Client, opts Options) *RedsyncLocker {
	pool := goredis.NewPool(rdb)
	return &RedsyncLocker{
		rs:   redsync.New(pool),
		opts: opts.withDefaults(),
	}
}

func (l *RedsyncLocker) Acquire(ctx context.Context, key string) (Lock, error) {
	mutex := l.rs.NewMutex(
		key,
		redsync.WithExpiry(l.opts.TTL),
		redsync.WithTries(l.opts.tries()),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	// Both "taken by another owner" and redis failures surface as not acquired;
	// callers treat them as retryable.
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, err)
	}
	return &redsyncLock{mutex: mutex}, nil
}

type redsyncLock struct {
	mutex *redsync.Mutex
}

func (l *redsyncLock) Release(ctx context.Context) error {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		if errors.Is(err, redsync.ErrLockAlreadyExpired) {
			return nil
		}
		return err
	}
	if !ok {
		return fmt.Errorf("lock %s: unlock rejected", l.mutex.Name())
	}
	return nil
}
