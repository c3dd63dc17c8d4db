// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed Store implementation.
type RedisStore struct {
	client *redis.Client
	prefix string
	closed atomic.Bool
}

// RedisOptions configures the Redis store.
type RedisOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys and set names. Empty by default so
	// the persisted layout matches the documented key names.
	Prefix string

	// PoolSize is the maximum number of connections (0 = use default)
	PoolSize int

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration

	// ReadTimeout is the timeout for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for write operations
	WriteTimeout time.Duration
}

// DefaultRedisOptions returns sensible defaults.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		PoolSize:       10,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// NewRedisStore creates a new Redis store with the given options.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{
		client: client,
		prefix: opts.Prefix,
	}, nil
}

// NewRedisStoreFromURL creates a Redis store from just a URL with default options.
func NewRedisStoreFromURL(url, prefix string) (*RedisStore, error) {
	opts := DefaultRedisOptions()
	opts.URL = url
	opts.Prefix = prefix
	return NewRedisStore(opts)
}

func (s *RedisStore) prefixKey(key string) string {
	return s.prefix + key
}

// Get retrieves a value.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	val, err := s.client.Get(ctx, s.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

// Set stores a value with the specified TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.client.Set(ctx, s.prefixKey(key), value, ttl).Err()
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.client.Del(ctx, s.prefixKey(key)).Err()
}

// SortedAdd adds a member to a sorted set.
func (s *RedisStore) SortedAdd(ctx context.Context, set string, score float64, member string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.client.ZAdd(ctx, s.prefixKey(set), redis.Z{Score: score, Member: member}).Err()
}

// SortedRemove removes a member from a sorted set.
func (s *RedisStore) SortedRemove(ctx context.Context, set, member string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.client.ZRem(ctx, s.prefixKey(set), member).Err()
}

// SortedRange returns members by rank.
func (s *RedisStore) SortedRange(ctx context.Context, set string, start, stop int64, reverse bool) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	if reverse {
		return s.client.ZRevRange(ctx, s.prefixKey(set), start, stop).Result()
	}
	return s.client.ZRange(ctx, s.prefixKey(set), start, stop).Result()
}

// SortedTrimByRank removes members in the given rank range.
func (s *RedisStore) SortedTrimByRank(ctx context.Context, set string, start, stop int64) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.client.ZRemRangeByRank(ctx, s.prefixKey(set), start, stop).Err()
}

// Ping checks if the Redis connection is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		return s.client.Close()
	}
	return nil
}

// Ensure RedisStore implements Store and Pinger.
var (
	_ Store  = (*RedisStore)(nil)
	_ Pinger = (*RedisStore)(nil)
)
