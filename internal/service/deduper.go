package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper remembers inbound message ids.
type Deduper interface {
	// AcquireOnce reports true the first time key is seen.
	AcquireOnce(ctx context.Context, key string) bool
	// Release forgets key so the message can be processed again.
	Release(ctx context.Context, key string)
}

// RedisDeduper uses SETNX with a TTL. Redis failures allow processing.
type RedisDeduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDeduper returns a Redis-backed deduper, or one that admits everything when rdb is nil.
func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) Deduper {
	if rdb == nil {
		return noopDeduper{}
	}
	return &RedisDeduper{rdb: rdb, ttl: ttl, logger: logger}
}

func (d *RedisDeduper) AcquireOnce(ctx context.Context, key string) bool {
	redisKey := "dedup:inbound:" + key
	ok, err := d.rdb.SetNX(ctx, redisKey, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("redis dedup check failed, allowing processing",
			zap.String("message_id", key),
			zap.Error(err))
		return true
	}
	if !ok {
		d.logger.Info("skipped duplicated inbound email", zap.String("dedup_key", redisKey))
	}
	return ok
}

// Release drops the key after a failed attempt.
func (d *RedisDeduper) Release(ctx context.Context, key string) {
	if err := d.rdb.Del(ctx, "dedup:inbound:"+key).Err(); err != nil {
		d.logger.Warn("redis dedup release failed", zap.String("message_id", key), zap.Error(err))
	}
}

type noopDeduper struct{}

func (noopDeduper) AcquireOnce(context.Context, string) bool { return true }

func (noopDeduper) Release(context.Context, string) {}
