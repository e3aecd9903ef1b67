package keylock

import (
	"sync"
	"testing"
)

func TestLock_SerializesSameKey(t *testing.T) {
	kl := New()
	const n = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("doc1|2025-03-10")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != n {
		t.Errorf("counter = %d, want %d", counter, n)
	}
}

func TestLock_IndependentKeys(t *testing.T) {
	kl := New()
	unlockA := kl.Lock("a")
	// A held lock on one key must not block another key.
	done := make(chan struct{})
	go func() {
		unlockB := kl.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestLock_ReusableAfterUnlock(t *testing.T) {
	kl := New()
	for i := 0; i < 3; i++ {
		unlock := kl.Lock("k")
		unlock()
	}
}
