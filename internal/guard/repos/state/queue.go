package state

import (
	"context"
	"sync"
)

// Queue serializes mutations per persisted key. The store offers no
// transactions, so every read-modify-write of a key is a critical
// section: one mutation in flight per key, later callers wait behind it
// instead of racing a stale read.
type Queue struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewQueue returns an empty per-key serialization queue.
func NewQueue() *Queue {
	return &Queue{locks: map[string]*keyLock{}}
}

// Do runs fn while holding the lock for key. Callers for the same key
// are serialized in lock-acquisition order; different keys do not
// contend. The context is checked before fn runs so a cancelled caller
// does not perform a pointless mutation after waiting.
func (q *Queue) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	kl := q.acquire(key)
	kl.mu.Lock()
	defer func() {
		kl.mu.Unlock()
		q.release(key, kl)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (q *Queue) acquire(key string) *keyLock {
	q.mu.Lock()
	defer q.mu.Unlock()
	kl, ok := q.locks[key]
	if !ok {
		kl = &keyLock{}
		q.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (q *Queue) release(key string, kl *keyLock) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(q.locks, key)
	}
}
