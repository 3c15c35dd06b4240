package locker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesSameKey(t *testing.T) {
	lk := NewLocalLocker()

	const goroutines = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lk.WithLock(context.Background(), "booking:doc:t", func(ctx context.Context) error {
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	lk := NewLocalLocker()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = lk.WithLock(context.Background(), "a", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	// A different key must not block behind "a".
	err := lk.WithLock(context.Background(), "b", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	close(release)
}

func TestLocalLockerPropagatesError(t *testing.T) {
	lk := NewLocalLocker()
	want := errors.New("boom")

	err := lk.WithLock(context.Background(), "k", func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}
