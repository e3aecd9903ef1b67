// Package keylock provides a mutex per string key. The scheduling ledger and
// calendar overrides use it to serialize check-and-commit sequences on a
// single logical resource (doctor+date, or a record id) without one global
// lock.
package keylock

import "sync"

// KeyLock hands out one mutex per key. Mutexes are created lazily and kept
// for the life of the KeyLock; the key space here (doctor-dates, record ids)
// is small enough that eviction is not worth the complexity.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the unlock function.
func (k *KeyLock) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
