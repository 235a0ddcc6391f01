package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b") // must not block
	assert.Equal(t, 2, k.size())
	unlockA()
	unlockB()
	assert.Equal(t, 0, k.size())
}

func TestKeyedMutex_SameKeyExcludes(t *testing.T) {
	k := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("cart")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, k.size())
}

func TestKeyedMutex_LockContextCancelled(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("cart")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	second, err := k.LockContext(ctx, "cart")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, second)
	assert.Equal(t, 1, k.size())

	unlock()
	assert.Equal(t, 0, k.size())

	again, err := k.LockContext(context.Background(), "cart")
	require.NoError(t, err)
	again()
}
