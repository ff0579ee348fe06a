// Package lock serializes referral processing per host. Two referral
// requests for the same host racing through the quota check is the classic
// check-then-act hazard; a per-host lock closes it within one process
// (memory) or across replicas (redis).
package lock

import (
	"context"
	"sync"
)

// Locker grants exclusive access to a host's referral processing. Acquire
// blocks until the lock is held or ctx is done; the returned release
// function must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemoryLocker serializes per key within a single process.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
