// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type withLocker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// exerciseMutualExclusion runs n goroutines against the same key and fails
// if two of them are ever inside the critical section together.
func exerciseMutualExclusion(t *testing.T, l withLocker, n int) {
	t.Helper()
	var inside, peak int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), "wallet-1", func() error {
				cur := atomic.AddInt32(&inside, 1)
				if cur > atomic.LoadInt32(&peak) {
					atomic.StoreInt32(&peak, cur)
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestKeyedMutex_Serializes(t *testing.T) {
	km := NewKeyedMutex()
	exerciseMutualExclusion(t, km, 16)
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	entered := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = km.WithLock(context.Background(), "a", func() error {
			close(entered)
			<-done
			return nil
		})
	}()
	<-entered
	err := km.WithLock(context.Background(), "b", func() error { return nil })
	require.NoError(t, err)
	close(done)
}

func TestKeyedMutex_ContextCancelledWhileWaiting(t *testing.T) {
	km := NewKeyedMutex()
	entered := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = km.WithLock(context.Background(), "a", func() error {
			close(entered)
			<-done
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := km.WithLock(ctx, "a", func() error { t.Fatal("must not run"); return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(done)
}

func TestKeyedMutex_PropagatesError(t *testing.T) {
	km := NewKeyedMutex()
	boom := errors.New("boom")
	assert.ErrorIs(t, km.WithLock(context.Background(), "a", func() error { return boom }), boom)
}

func newMiniredisLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLock(client, Options{RetryDelay: time.Millisecond, Tries: 500}), mr
}

func TestRedisLock_Serializes(t *testing.T) {
	l, _ := newMiniredisLock(t)
	exerciseMutualExclusion(t, l, 8)
}

func TestRedisLock_ReleasesKey(t *testing.T) {
	l, mr := newMiniredisLock(t)
	err := l.WithLock(context.Background(), "wallet-9", func() error {
		assert.True(t, mr.Exists(DefaultOptions().Prefix+"wallet-9"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(DefaultOptions().Prefix+"wallet-9"))
}

func TestNewRedisLockFromConfig_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, err := NewRedisLockFromConfig(ctx, RedisConfig{Addr: "127.0.0.1:1"}, Options{})
	assert.Error(t, err)
}
