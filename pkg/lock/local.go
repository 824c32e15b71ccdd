package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	store *cache.Cache
	opts  Options
	mu    sync.Mutex
}

func NewLocalLocker(opts Options) *LocalLocker {
	opts = opts.withDefaults()
	return &LocalLocker{
		store: cache.New(opts.TTL, opts.TTL*2),
		opts:  opts,
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Lock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.opts.Wait)

	for {
		if l.tryAdd(key, token) {
			return &localLock{owner: l, key: key, token: token}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}

		timer := time.NewTimer(l.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-timer.C:
		}
	}
}

// tryAdd and release share mu so a release that read its own token cannot delete an entry
// added after that token expired.
func (l *LocalLocker) tryAdd(key, token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Add fails while an unexpired entry exists.
	return l.store.Add(key, token, l.opts.TTL) == nil
}

func (l *LocalLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, found := l.store.Get(key)
	if !found {
		return
	}
	if current.(string) == token {
		l.store.Delete(key)
	}
}

type localLock struct {
	owner *LocalLocker
	key   string
	token string
	once  sync.Once
}

func (l *localLock) Release(ctx context.Context) error {
	l.once.Do(func() {
		l.owner.release(l.key, l.token)
	})
	return nil
}
