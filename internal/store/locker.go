package store

import (
	"sync"

	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
)

// KeyLocker serializes work on a single conversation key while leaving
// other keys independent. Locks are dropped once no goroutine holds or waits on them.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[conversation.Key]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLocker returns an empty locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[conversation.Key]*keyLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (l *KeyLocker) Lock(key conversation.Key) func() {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *KeyLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
