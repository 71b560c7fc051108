package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	kl := newKeyLock()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("a")
			counter++
			kl.Unlock("a")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyLockReleasesEntries(t *testing.T) {
	kl := newKeyLock()

	kl.Lock("a")
	kl.Unlock("a")
	kl.Lock("b")
	kl.Unlock("b")

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks)
}

func TestKeyLockDistinctKeysDoNotBlock(t *testing.T) {
	kl := newKeyLock()

	kl.Lock("a")
	done := make(chan struct{})
	go func() {
		kl.Lock("b")
		kl.Unlock("b")
		close(done)
	}()
	<-done
	kl.Unlock("a")
}
