package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerSerializesSameKey(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	const workers = 20
	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "host-1")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "at most one holder per key at a time")
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	releaseA, err := l.Acquire(ctx, "host-a")
	require.NoError(t, err)
	defer releaseA()

	// A held lock on another key must not block this one.
	done := make(chan struct{})
	go func() {
		releaseB, err := l.Acquire(ctx, "host-b")
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key acquisition blocked")
	}
}

func TestMemoryLockerRespectsContext(t *testing.T) {
	l := NewMemoryLocker()

	release, err := l.Acquire(context.Background(), "host-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "host-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
