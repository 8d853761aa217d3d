// Package cache holds the optional redis-backed read caches.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UnreadCounter caches per-user unread notification counts.
//
// A count is computed from the database between Version and Set. Set only
// stores it when no Invalidate landed in between, otherwise a count read
// before a write could be cached after that write's invalidation.
type UnreadCounter interface {
	Get(ctx context.Context, userID string) (int64, bool)
	Version(ctx context.Context, userID string) (int64, bool)
	Set(ctx context.Context, userID string, count, version int64)
	Invalidate(ctx context.Context, userID string)
}

// versionTTL outlives any single count computation by a wide margin. An
// expired version reads as zero again, which is only unsafe mid-computation.
const versionTTL = 24 * time.Hour

var errStaleVersion = errors.New("unread count invalidated")

// UnreadCache stores counts in redis. A nil client turns every call into a
// miss or a no-op, so callers never need to check whether caching is enabled.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewUnreadCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *UnreadCache {
	return &UnreadCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "unread_cache")),
	}
}

var _ UnreadCounter = (*UnreadCache)(nil)

func unreadKey(userID string) string {
	return fmt.Sprintf("unread:%s", userID)
}

func unreadVersionKey(userID string) string {
	return fmt.Sprintf("unread:ver:%s", userID)
}

func (c *UnreadCache) Get(ctx context.Context, userID string) (int64, bool) {
	if c.client == nil {
		return 0, false
	}
	count, err := c.client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("failed to read unread count", zap.String("userId", userID), zap.Error(err))
		}
		return 0, false
	}
	return count, true
}

// Version returns userID's invalidation counter. ok is false when it cannot
// be read, in which case the caller should not cache what it computes.
func (c *UnreadCache) Version(ctx context.Context, userID string) (int64, bool) {
	if c.client == nil {
		return 0, false
	}
	version, err := c.client.Get(ctx, unreadVersionKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.logger.Warn("failed to read unread version", zap.String("userId", userID), zap.Error(err))
		return 0, false
	}
	return version, true
}

// Set caches count if userID has not been invalidated since version was read.
func (c *UnreadCache) Set(ctx context.Context, userID string, count, version int64) {
	if c.client == nil {
		return
	}
	versionKey := unreadVersionKey(userID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, unreadKey(userID), count, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("skipped caching stale unread count", zap.String("userId", userID))
	default:
		c.logger.Warn("failed to cache unread count", zap.String("userId", userID), zap.Error(err))
	}
}

// Invalidate drops the cached count and bumps the version so an in-flight
// Set for an older count is discarded.
func (c *UnreadCache) Invalidate(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	versionKey := unreadVersionKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		pipe.Del(ctx, unreadKey(userID))
		return nil
	})
	if err != nil {
		c.logger.Error("failed to invalidate unread cache", zap.String("userId", userID), zap.Error(err))
	}
}
