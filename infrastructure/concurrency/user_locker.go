// Package concurrency provides the in-process per-user generation lock used
// when no distributed lock is configured.
package concurrency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"versegraph/application/ports"
)

// KeyedLocker holds one slot per user with a holder or waiter. A slot is
// dropped when its last holder or waiter leaves.
type KeyedLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

var _ ports.UserLocker = (*KeyedLocker)(nil)

// NewKeyedLocker creates an empty locker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{slots: make(map[string]*slot)}
}

func (l *KeyedLocker) acquire(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *KeyedLocker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Lock blocks until the user's slot is free, ctx is done or timeout passes.
// A non-positive timeout waits on ctx alone.
func (l *KeyedLocker) Lock(ctx context.Context, userID string, timeout time.Duration) (func(), error) {
	s := l.acquire(userID)

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				l.release(userID, s)
			})
		}, nil
	case <-expired:
		l.release(userID, s)
		return nil, fmt.Errorf("timeout after %s waiting for lock on user %s", timeout, userID)
	case <-ctx.Done():
		l.release(userID, s)
		return nil, ctx.Err()
	}
}
