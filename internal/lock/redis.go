// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	goredislib "github.com/redis/go-redis/v9"
)

// Options tunes the distributed mutex.
type Options struct {
	Expiry      time.Duration
	Tries       int
	RetryDelay  time.Duration
	DriftFactor float64
	// Prefix namespaces the redis keys.
	Prefix string
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Expiry:      10 * time.Second,
		Tries:       32,
		RetryDelay:  100 * time.Millisecond,
		DriftFactor: 0.01,
		Prefix:      "soroban-trader:wallet:",
	}
}

// RedisLock is a redsync mutex per key.
type RedisLock struct {
	rs   *redsync.Redsync
	opts Options
}

// RedisConfig holds the connection settings for NewRedisLockFromConfig.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLock builds a RedisLock on an existing client.
func NewRedisLock(client goredislib.UniversalClient, opts Options) *RedisLock {
	def := DefaultOptions()
	if opts.Expiry <= 0 {
		opts.Expiry = def.Expiry
	}
	if opts.Tries <= 0 {
		opts.Tries = def.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = def.RetryDelay
	}
	if opts.DriftFactor <= 0 {
		opts.DriftFactor = def.DriftFactor
	}
	if opts.Prefix == "" {
		opts.Prefix = def.Prefix
	}
	return &RedisLock{rs: redsync.New(goredis.NewPool(client)), opts: opts}
}

// NewRedisLockFromConfig dials redis and verifies the connection.
func NewRedisLockFromConfig(ctx context.Context, cfg RedisConfig, opts Options) (*RedisLock, goredislib.UniversalClient, error) {
	client := goredislib.NewClient(&goredislib.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisLock(client, opts), client, nil
}

// WithLock runs fn while holding the distributed mutex for key.
func (l *RedisLock) WithLock(ctx context.Context, key string, fn func() error) error {
	name := l.opts.Prefix + key
	mutex := l.rs.NewMutex(
		name,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
		redsync.WithDriftFactor(l.opts.DriftFactor),
	)

	logging.Debugf("acquiring lock %s", name)
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			logging.Errorf("failed to release lock %s: ok=%v err=%v", name, ok, err)
		}
	}()
	return fn()
}
