// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the read-path cache for public site content.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the cached value, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero TTL means the cache's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all keys sharing a prefix. Used to invalidate a
	// whole page's cached sections after a write.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Config selects and tunes a cache backend.
type Config struct {
	// RedisURL selects the Redis backend when non-empty, for example
	// redis://localhost:6379/0. Empty selects the in-process backend.
	RedisURL string

	// Prefix is prepended to every key on the Redis backend.
	Prefix string

	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration

	// MaxSize caps the in-process backend's entry count (0 = unlimited).
	MaxSize int
}

// New creates a cache from the config, choosing Redis when a URL is set.
func New(cfg Config) (Cache, error) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.RedisURL != "" {
		return NewRedisCache(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
	}
	return NewMemoryCache(cfg.DefaultTTL, cfg.MaxSize), nil
}
