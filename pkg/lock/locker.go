package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when the lock is still held by someone else after the wait time.
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker grants mutually exclusive, TTL-bounded locks keyed by name.
type Locker interface {
	Acquire(ctx context.Context, key string) (Lock, error)
}

// Lock is a held lock. Release is safe to call once; releasing an expired lock is not an error.
type Lock interface {
	Release(ctx context.Context) error
}

// Options bounds how long a lock lives and how long Acquire waits for it.
type Options struct {
	TTL        time.Duration
	Wait       time.Duration
	RetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 30 * time.Second
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 100 * time.Millisecond
	}
	if o.Wait < 0 {
		o.Wait = 0
	}
	return o
}

// tries is the number of attempts that fit in the wait time, at least one.
func (o Options) tries() int {
	n := int(o.Wait/o.RetryDelay) + 1
	if n < 1 {
		n = 1
	}
	return n
}
