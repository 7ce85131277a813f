package repository

import (
	"context"
	"sync"
)

// KeyedMutexLocker is an in-process ResourceLocker: one lock per room id,
// acquired in request order. Different rooms never contend.
type KeyedMutexLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewKeyedMutexLocker() *KeyedMutexLocker {
	return &KeyedMutexLocker{
		locks: make(map[string]chan struct{}),
	}
}

func (l *KeyedMutexLocker) Acquire(ctx context.Context, roomID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[roomID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[roomID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
